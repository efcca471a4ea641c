package resource

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// XML element names for the wire shape.
const (
	XMLElement     = "Sample"
	XMLListElement = "ArrayOfSample"
)

// ErrEmptyDocument is returned when an XML body has no root element.
var ErrEmptyDocument = errors.New("empty XML document")

// EncodeXML renders a single resource as an XML document.
func EncodeXML(r Resource) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	appendElement(&doc.Element, r)
	return doc.WriteToBytes()
}

// EncodeXMLList renders resources wrapped in an ArrayOfSample root.
func EncodeXMLList(rs []Resource) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(XMLListElement)
	for _, r := range rs {
		appendElement(root, r)
	}
	return doc.WriteToBytes()
}

func appendElement(parent *etree.Element, r Resource) {
	el := parent.CreateElement(XMLElement)
	el.CreateElement("Key").SetText(strconv.Itoa(r.Key))
	el.CreateElement("Data").SetText(r.Data)
	el.CreateElement("ReadOnlyData").SetText(r.ReadOnlyData)
	el.CreateElement("Tag").SetText(r.Tag)
}

// DecodeXML parses a single resource document. A missing Key element leaves
// Key at zero; it is never trusted by the repository anyway.
func DecodeXML(body []byte) (Resource, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return Resource{}, fmt.Errorf("invalid XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return Resource{}, ErrEmptyDocument
	}
	if root.Tag != XMLElement {
		return Resource{}, fmt.Errorf("root element must be %s, got %s", XMLElement, root.Tag)
	}
	return elementToResource(root)
}

// DecodeXMLList parses an ArrayOfSample document.
func DecodeXMLList(body []byte) ([]Resource, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, fmt.Errorf("invalid XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, ErrEmptyDocument
	}
	if root.Tag != XMLListElement {
		return nil, fmt.Errorf("root element must be %s, got %s", XMLListElement, root.Tag)
	}

	items := root.SelectElements(XMLElement)
	out := make([]Resource, 0, len(items))
	for _, el := range items {
		r, err := elementToResource(el)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func elementToResource(el *etree.Element) (Resource, error) {
	var r Resource
	if k := el.SelectElement("Key"); k != nil {
		text := strings.TrimSpace(k.Text())
		if text != "" {
			key, err := strconv.Atoi(text)
			if err != nil {
				return Resource{}, fmt.Errorf("invalid Key %q: %w", text, err)
			}
			r.Key = key
		}
	}
	if d := el.SelectElement("Data"); d != nil {
		r.Data = d.Text()
	}
	if ro := el.SelectElement("ReadOnlyData"); ro != nil {
		r.ReadOnlyData = ro.Text()
	}
	if t := el.SelectElement("Tag"); t != nil {
		r.Tag = strings.TrimSpace(t.Text())
	}
	return r, nil
}
