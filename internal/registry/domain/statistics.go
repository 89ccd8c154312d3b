package domain

import "math"

// Statistics summarises the client book for the dashboard.
type Statistics struct {
	Total                int
	Active               int
	Inactive             int
	WithFiscalCredential int
	PercentActive        float64
}

// Tally accumulates Statistics one client at a time.
type Tally struct {
	total, active, fiscal int
}

// Add counts c.
func (t *Tally) Add(c Client) {
	t.total++
	if c.Active {
		t.active++
	}
	if c.HasFiscalCredential() {
		t.fiscal++
	}
}

// Statistics returns the totals seen so far. PercentActive is rounded to two
// decimals and is 0 for an empty book.
func (t *Tally) Statistics() Statistics {
	s := Statistics{
		Total:                t.total,
		Active:               t.active,
		Inactive:             t.total - t.active,
		WithFiscalCredential: t.fiscal,
	}
	if t.total > 0 {
		s.PercentActive = math.Round(float64(t.active)/float64(t.total)*100*100) / 100
	}
	return s
}

// ComputeStatistics tallies clients.
func ComputeStatistics(clients []Client) Statistics {
	var t Tally
	for _, c := range clients {
		t.Add(c)
	}
	return t.Statistics()
}
