// Package render serializes feed records into the weather_data XML document.
package render

import (
	"encoding/xml"
	"fmt"

	"github.com/kjstillabower/rainfall-xml-service/internal/models"
)

// ContentType is the media type of XML produced by this package.
const ContentType = "application/xml; charset=utf-8"

const indent = "  "

// XML renders records as an indented UTF-8 document rooted at weather_data, one
// record element per entry. An empty slice yields an empty weather_data element.
func XML(records []models.Record) ([]byte, error) {
	body, err := xml.MarshalIndent(models.Document{Records: records}, "", indent)
	if err != nil {
		return nil, fmt.Errorf("render xml: %w", err)
	}
	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	return append(out, '\n'), nil
}
