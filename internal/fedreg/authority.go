package fedreg

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"strings"
)

// GetRuleAuthority extracts the statutory authority citations from a
// document's GPO full-text XML. Citation blocks live in <AUTH> elements,
// whose <P> children hold semicolon-separated citation strings (the <AUTH>
// element usually also contains a heading, which is skipped).
func (c *Client) GetRuleAuthority(ctx context.Context, doc *Document) ([]string, error) {
	if doc.FullTextXMLURL == "" {
		return nil, nil
	}

	body, err := c.http.Get(ctx, doc.FullTextXMLURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch full text XML: %w", err)
	}

	return parseAuthority(body)
}

// parseAuthority walks the XML token stream collecting text from <P>
// elements nested under <AUTH>
func parseAuthority(content []byte) ([]string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))

	var citations []string
	authDepth := 0
	inParagraph := false
	var text strings.Builder

	for {
		token, err := decoder.Token()
		if err != nil {
			break // End of document or malformed tail
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "AUTH":
				authDepth++
			case "P":
				if authDepth > 0 {
					inParagraph = true
					text.Reset()
				}
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "AUTH":
				if authDepth > 0 {
					authDepth--
				}
			case "P":
				if inParagraph {
					inParagraph = false
					for _, item := range strings.Split(text.String(), ";") {
						item = strings.TrimSpace(item)
						if item != "" {
							citations = append(citations, item)
						}
					}
				}
			}

		case xml.CharData:
			if inParagraph {
				text.Write(t)
			}
		}
	}

	return citations, nil
}
