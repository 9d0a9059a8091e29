// Package diagxml implements the /xml diagnostic dump: every diagnostic in
// a diag.Sink is shaped into a JSON document path-wise with sjson, walked
// back out with gjson, and the result is serialized as XML. Only the final
// tag-serialization step uses encoding/xml; the document itself is built
// and read through the JSON-path libraries rather than XML's own tree
// marshaling.
package diagxml

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/csc-go/compiler/internal/diag"
)

// doc is the shape diagnostics are rendered into. Field order matches the
// XML element order csc.exe-style logs use: one <Diagnostic> per entry,
// in emission order.
type doc struct {
	XMLName     xml.Name       `xml:"CompilerLog"`
	Diagnostics []xmlDiagnostic `xml:"Diagnostics>Diagnostic"`
}

type xmlDiagnostic struct {
	Code    string `xml:"Code,attr"`
	File    string `xml:"File,attr,omitempty"`
	Line    int    `xml:"Line,attr,omitempty"`
	Column  int    `xml:"Column,attr,omitempty"`
	Message string `xml:",chardata"`
}

// buildJSON shapes sink's diagnostics into a JSON document, one array entry
// per diagnostic, entirely via sjson.Set path expressions.
func buildJSON(sink *diag.Sink) (string, error) {
	json := "{}"
	var err error
	for i, d := range sink.Diagnostics() {
		json, err = sjson.Set(json, fmt.Sprintf("diagnostics.%d.code", i), string(d.Code))
		if err != nil {
			return "", fmt.Errorf("diagxml: shaping diagnostic %d: %w", i, err)
		}
		json, err = sjson.Set(json, fmt.Sprintf("diagnostics.%d.message", i), d.Message)
		if err != nil {
			return "", fmt.Errorf("diagxml: shaping diagnostic %d: %w", i, err)
		}
		if d.Range.Start.Line != 0 {
			json, err = sjson.Set(json, fmt.Sprintf("diagnostics.%d.file", i), d.Range.Start.File)
			if err != nil {
				return "", fmt.Errorf("diagxml: shaping diagnostic %d: %w", i, err)
			}
			json, err = sjson.Set(json, fmt.Sprintf("diagnostics.%d.line", i), d.Range.Start.Line)
			if err != nil {
				return "", fmt.Errorf("diagxml: shaping diagnostic %d: %w", i, err)
			}
			json, err = sjson.Set(json, fmt.Sprintf("diagnostics.%d.column", i), d.Range.Start.Column)
			if err != nil {
				return "", fmt.Errorf("diagxml: shaping diagnostic %d: %w", i, err)
			}
		}
	}
	return json, nil
}

// Write renders every diagnostic in sink as an XML <CompilerLog> document
// and writes it to w, preceded by the standard XML declaration.
func Write(w io.Writer, sink *diag.Sink) error {
	json, err := buildJSON(sink)
	if err != nil {
		return err
	}

	var d doc
	gjson.Get(json, "diagnostics").ForEach(func(_, entry gjson.Result) bool {
		d.Diagnostics = append(d.Diagnostics, xmlDiagnostic{
			Code:    entry.Get("code").String(),
			File:    entry.Get("file").String(),
			Line:    int(entry.Get("line").Int()),
			Column:  int(entry.Get("column").Int()),
			Message: entry.Get("message").String(),
		})
		return true
	})

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("diagxml: writing header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("diagxml: encoding document: %w", err)
	}
	return nil
}
