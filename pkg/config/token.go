package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v2"
)

const keyringService = "trackeraudit"

// ErrTokenNotFound means no token is stored for the requested context.
var ErrTokenNotFound = errors.New("no token stored for context")

// TokenStore keeps OAuth tokens in the system keyring, keyed by context
// name. Hosts without a usable keyring (headless boxes, CI) fall back to a
// mode-0600 file next to the config.
type TokenStore struct {
	filePath string
}

func NewTokenStore() *TokenStore {
	return &TokenStore{filePath: DefaultTokenPath()}
}

// NewTokenStoreAt uses an explicit fallback file path. Used in tests.
func NewTokenStoreAt(filePath string) *TokenStore {
	return &TokenStore{filePath: filePath}
}

func (s *TokenStore) Set(contextName, token string) error {
	if contextName == "" {
		return errors.New("context name is required")
	}
	if err := keyring.Set(keyringService, contextName, token); err == nil {
		return nil
	}
	tokens, err := s.readFile()
	if err != nil {
		return err
	}
	tokens[contextName] = token
	return s.writeFile(tokens)
}

func (s *TokenStore) Get(contextName string) (string, error) {
	if contextName == "" {
		return "", errors.New("context name is required")
	}
	token, err := keyring.Get(keyringService, contextName)
	if err == nil && token != "" {
		return token, nil
	}
	tokens, readErr := s.readFile()
	if readErr != nil {
		return "", readErr
	}
	if token, ok := tokens[contextName]; ok && token != "" {
		return token, nil
	}
	return "", fmt.Errorf("%w: %s", ErrTokenNotFound, contextName)
}

func (s *TokenStore) Delete(contextName string) error {
	// Best effort in the keyring, authoritative in the fallback file.
	_ = keyring.Delete(keyringService, contextName)
	tokens, err := s.readFile()
	if err != nil {
		return err
	}
	if _, ok := tokens[contextName]; !ok {
		return nil
	}
	delete(tokens, contextName)
	return s.writeFile(tokens)
}

func (s *TokenStore) readFile() (map[string]string, error) {
	content, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	tokens := map[string]string{}
	if err := yaml.Unmarshal(content, &tokens); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return tokens, nil
}

func (s *TokenStore) writeFile(tokens map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o700); err != nil {
		return fmt.Errorf("failed to create token dir: %w", err)
	}
	content, err := yaml.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("failed to marshal tokens: %w", err)
	}
	return os.WriteFile(s.filePath, content, 0o600)
}
