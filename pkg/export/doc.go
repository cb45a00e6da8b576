// Package export renders audit results into an Excel workbook with one
// sheet per result section, suitable for handing to a compliance reviewer.
package export
