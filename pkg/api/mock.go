package api

import (
	"context"
	"fmt"
	"sync"
)

var ErrMockError = fmt.Errorf("api.Mock(): mock error") // Used to mock errors in unit tests

const defaultMockPageSize = 5

// MockIncidentClient serves Incidents in pages of PageSize, the way the real API does.
// Pages listed in FailPages fail with a network *Error wrapping ErrMockError.
type MockIncidentClient struct {
	Incidents []Incident
	PageSize  int

	// TotalCount overrides the advertised total when non-zero
	TotalCount int

	// OmitTotal drops the total count from every page
	OmitTotal bool

	FailPages map[int]bool

	// Block, when set, holds every call until it is closed or the context ends
	Block chan struct{}

	mu    sync.Mutex
	calls []int
}

func (m *MockIncidentClient) ListAvailableIncidentsWithContext(ctx context.Context, page int) (*Page, error) {
	m.mu.Lock()
	m.calls = append(m.calls, page)
	m.mu.Unlock()

	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return nil, &Error{Kind: KindNetwork, Page: page, Message: "request failed", Err: ctx.Err()}
		}
	}

	// Provided so we can mock error responses for unit tests
	if m.FailPages[page] {
		return nil, &Error{Kind: KindNetwork, Page: page, Message: "request failed", Err: ErrMockError}
	}

	size := m.PageSize
	if size <= 0 {
		size = defaultMockPageSize
	}

	p := &Page{Number: page, Incidents: []Incident{}}

	start := (page - 1) * size
	if start < len(m.Incidents) {
		end := min(start+size, len(m.Incidents))
		p.Incidents = append(p.Incidents, m.Incidents[start:end]...)
	}

	if !m.OmitTotal {
		p.HasTotal = true
		p.TotalCount = len(m.Incidents)
		if m.TotalCount != 0 {
			p.TotalCount = m.TotalCount
		}
	}

	return p, nil
}

// Calls returns the pages requested so far, in order
func (m *MockIncidentClient) Calls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.calls...)
}

var (
	sampleOngs = []struct{ name, email, whatsapp, city, uf string }{
		{"APAD", "contato@apad.com.br", "47999990001", "Rio do Sul", "SC"},
		{"Amigos dos Bichos", "ola@amigosdosbichos.org", "11988880002", "São Paulo", "SP"},
		{"Patas Unidas", "patas@unidas.org", "21977770003", "Niterói", "RJ"},
		{"Lar Felino", "adote@larfelino.org", "31966660004", "Belo Horizonte", "MG"},
	}

	sampleTitles = []string{
		"Cadelinha atropelada",
		"Gato com fratura na pata",
		"Cirurgia de castração",
		"Tratamento de sarna",
		"Ração para o abrigo",
		"Vacinas para filhotes",
	}
)

// SampleIncidents returns n deterministic incidents with ids 1..n
func SampleIncidents(n int) []Incident {
	incidents := make([]Incident, 0, n)

	for i := 0; i < n; i++ {
		ong := sampleOngs[i%len(sampleOngs)]
		title := sampleTitles[i%len(sampleTitles)]
		incidents = append(incidents, Incident{
			ID:          int64(i + 1),
			Title:       title,
			Description: fmt.Sprintf("%s. Caso #%d precisa de ajuda.", title, i+1),
			Value:       float64((i%9)+1)*120 + 0.5,
			OngID:       fmt.Sprintf("ong%04d", i%len(sampleOngs)),
			Name:        ong.name,
			Email:       ong.email,
			Whatsapp:    ong.whatsapp,
			City:        ong.city,
			UF:          ong.uf,
		})
	}

	return incidents
}
