// Package legacy reads and writes the original dados.json document and
// migrates its optional fields into the condominium and agent models.
package legacy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const (
	dateLayout = "2006-01-02"

	// DefaultStartDate is used for migrated assignments that carry no date.
	DefaultStartDate = "2024-01-01"
)

// Document is the top-level dados.json shape.
type Document struct {
	Condominiums []Condominium `json:"condominios"`
	Agents       []Agent       `json:"acs,omitempty"`
}

// Condominium mirrors one entry of "condominios". Older documents carry only
// the single-agent fields acs_responsavel/blocos_ativos.
type Condominium struct {
	ID              Int           `json:"id"`
	Name            string        `json:"nome"`
	Team            string        `json:"equipe"`
	Towers          Int           `json:"torres"`
	Apartments      Int           `json:"apartamentos"`
	Residents       Int           `json:"moradores"`
	Hypertensive    Int           `json:"hipertensos"`
	Diabetic        Int           `json:"diabeticos"`
	Pregnant        Int           `json:"gestantes"`
	Coverage        Int           `json:"cobertura"`
	Priority        string        `json:"prioridade,omitempty"`
	LastVisit       string        `json:"ultima_visita,omitempty"`
	CoveredBlocks   Int           `json:"blocos_cobertos"`
	UncoveredBlocks Int           `json:"blocos_descobertos"`
	CoverageStatus  string        `json:"status_cobertura,omitempty"`
	PrimaryAgent    *string       `json:"acs_responsavel,omitempty"`
	ActiveBlocks    *string       `json:"blocos_ativos,omitempty"`
	Assignments     *[]Assignment `json:"acs_multiplos,omitempty"`
}

// Assignment mirrors one entry of "acs_multiplos".
type Assignment struct {
	Name      string `json:"nome"`
	Blocks    string `json:"blocos"`
	StartDate string `json:"data_inicio,omitempty"`
}

// Agent mirrors one entry of "acs".
type Agent struct {
	ID           Int    `json:"id"`
	Name         string `json:"nome"`
	Team         string `json:"equipe"`
	Condominiums []Int  `json:"condominios"`
	ActiveBlocks string `json:"blocos_ativos,omitempty"`
}

// Int decodes integers written as JSON numbers, floats or numeric strings.
// null and "" decode to zero.
type Int int

func (i *Int) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*i = 0
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
		if raw == "" {
			*i = 0
			return nil
		}
	}
	if n, err := strconv.Atoi(raw); err == nil {
		*i = Int(n)
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("legacy: %s is not a number", string(data))
	}
	*i = Int(math.Round(f))
	return nil
}

// Decode parses a dados.json document. Missing lists decode as empty.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return &Document{Condominiums: []Condominium{}, Agents: []Agent{}}, nil
		}
		return nil, fmt.Errorf("decode legacy document: %w", err)
	}
	if doc.Condominiums == nil {
		doc.Condominiums = []Condominium{}
	}
	if doc.Agents == nil {
		doc.Agents = []Agent{}
	}
	return &doc, nil
}

// Encode writes doc as indented JSON with non-ASCII text kept readable.
func Encode(w io.Writer, doc *Document) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode legacy document: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Migrate synthesizes acs_multiplos from acs_responsavel/blocos_ativos on
// every condominium that predates multi-agent support. Documents already
// migrated are left untouched. It reports how many entries changed.
func Migrate(doc *Document) int {
	migrated := 0
	for i := range doc.Condominiums {
		c := &doc.Condominiums[i]
		if c.Assignments != nil || c.PrimaryAgent == nil {
			continue
		}
		assignments := []Assignment{}
		if name := strings.TrimSpace(*c.PrimaryAgent); name != "" {
			blocks := ""
			if c.ActiveBlocks != nil {
				blocks = *c.ActiveBlocks
			}
			start := c.LastVisit
			if start == "" {
				start = DefaultStartDate
			}
			assignments = append(assignments, Assignment{Name: name, Blocks: blocks, StartDate: start})
		}
		c.Assignments = &assignments
		migrated++
	}
	return migrated
}
