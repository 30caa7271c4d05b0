package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mesh-intelligence/satreq/pkg/types"
)

// indentUnit is the indentation of the data file.
const indentUnit = "    "

// requirementJSON is one record of the data file. Field order is the order
// written to disk.
type requirementJSON struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Desc         string `json:"desc"`
	ParentID     string `json:"parent_id"`
	Value        string `json:"value"`
	Unit         string `json:"unit"`
	Status       string `json:"status"`
	Method       string `json:"method"`
	LastModified string `json:"last_modified"`
	NeedsReview  bool   `json:"needs_review"`
}

func fromRequirement(r *types.Requirement) requirementJSON {
	rec := requirementJSON{
		ID:          r.ID,
		Type:        string(r.Type),
		Desc:        r.Description,
		ParentID:    r.ParentID,
		Value:       r.Value,
		Unit:        r.Unit,
		Status:      string(r.Status),
		Method:      string(r.Method),
		NeedsReview: r.NeedsReview,
	}
	if !r.LastModified.IsZero() {
		rec.LastModified = r.LastModified.In(time.Local).Format(types.TimestampLayout)
	}
	return rec
}

// toRequirement applies the defaults for missing fields. An unparseable
// timestamp becomes the zero time.
func (rec requirementJSON) toRequirement() *types.Requirement {
	r := &types.Requirement{
		ID:          rec.ID,
		Type:        types.RequirementType(rec.Type),
		Description: rec.Desc,
		ParentID:    rec.ParentID,
		Value:       rec.Value,
		Unit:        rec.Unit,
		Status:      types.Status(rec.Status),
		Method:      types.Method(rec.Method),
		NeedsReview: rec.NeedsReview,
	}
	r.ApplyDefaults()
	if rec.LastModified != "" {
		if t, err := time.ParseInLocation(types.TimestampLayout, rec.LastModified, time.Local); err == nil {
			r.LastModified = t
		}
	}
	return r
}

// encodeGraph renders g as the data file document. Object keys keep the
// graph's order; markup in descriptions is written unescaped.
func encodeGraph(g *types.Graph) ([]byte, error) {
	var b bytes.Buffer
	if len(g.Projects) == 0 {
		b.WriteString("{}\n")
		return b.Bytes(), nil
	}

	b.WriteString("{\n")
	for i, p := range g.Projects {
		writeKey(&b, 1, p.Name)
		if len(p.Subsystems) == 0 {
			b.WriteString("{}")
		} else {
			b.WriteString("{\n")
			for j, s := range p.Subsystems {
				writeKey(&b, 2, s.Name)
				if err := writeRecords(&b, s.Requirements); err != nil {
					return nil, fmt.Errorf("encoding %s/%s: %w", p.Name, s.Name, err)
				}
				writeSeparator(&b, j, len(p.Subsystems))
			}
			b.WriteString(strings.Repeat(indentUnit, 1))
			b.WriteString("}")
		}
		writeSeparator(&b, i, len(g.Projects))
	}
	b.WriteString("}\n")
	return b.Bytes(), nil
}

func writeKey(b *bytes.Buffer, depth int, key string) {
	b.WriteString(strings.Repeat(indentUnit, depth))
	b.WriteString(quote(key))
	b.WriteString(": ")
}

func writeSeparator(b *bytes.Buffer, i, n int) {
	if i < n-1 {
		b.WriteByte(',')
	}
	b.WriteByte('\n')
}

func writeRecords(b *bytes.Buffer, reqs []*types.Requirement) error {
	if len(reqs) == 0 {
		b.WriteString("[]")
		return nil
	}
	prefix := strings.Repeat(indentUnit, 3)
	b.WriteString("[\n")
	for i, r := range reqs {
		var rec bytes.Buffer
		enc := json.NewEncoder(&rec)
		enc.SetEscapeHTML(false)
		enc.SetIndent(prefix, indentUnit)
		if err := enc.Encode(fromRequirement(r)); err != nil {
			return fmt.Errorf("encoding %s: %w", r.ID, err)
		}
		b.WriteString(prefix)
		b.Write(bytes.TrimRight(rec.Bytes(), "\n"))
		writeSeparator(b, i, len(reqs))
	}
	b.WriteString(strings.Repeat(indentUnit, 2))
	b.WriteString("]")
	return nil
}

func quote(s string) string {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return strings.TrimRight(b.String(), "\n")
}

// decodeGraph parses the data file document keeping the key order of
// projects and subsystems. A key repeated at the same level replaces the
// earlier value in place. An empty document is an empty graph.
func decodeGraph(data []byte) (*types.Graph, error) {
	g := types.NewGraph()
	if len(bytes.TrimSpace(data)) == 0 {
		return g, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	for dec.More() {
		name, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		p := &types.Project{Name: name, Subsystems: []*types.Subsystem{}}
		if err := decodeProject(dec, p); err != nil {
			return nil, fmt.Errorf("project %q: %w", name, err)
		}
		if i := g.ProjectIndex(name); i >= 0 {
			g.Projects[i] = p
		} else {
			g.Projects = append(g.Projects, p)
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after document")
	}
	return g, nil
}

func decodeProject(dec *json.Decoder, p *types.Project) error {
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		name, err := readKey(dec)
		if err != nil {
			return err
		}
		s := &types.Subsystem{Name: name, Requirements: []*types.Requirement{}}
		if err := expectDelim(dec, '['); err != nil {
			return fmt.Errorf("subsystem %q: %w", name, err)
		}
		for dec.More() {
			var rec requirementJSON
			if err := dec.Decode(&rec); err != nil {
				return fmt.Errorf("subsystem %q: %w", name, err)
			}
			s.Requirements = append(s.Requirements, rec.toRequirement())
		}
		if err := expectDelim(dec, ']'); err != nil {
			return fmt.Errorf("subsystem %q: %w", name, err)
		}
		if i := p.SubsystemIndex(name); i >= 0 {
			p.Subsystems[i] = s
		} else {
			p.Subsystems = append(p.Subsystems, s)
		}
	}
	return expectDelim(dec, '}')
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
