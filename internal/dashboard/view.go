package dashboard

import "sort"

// Selection is the set of session ids the operator has ticked. It lives
// outside the view so a re-render can never lose it.
type Selection map[uint]struct{}

func NewSelection(ids ...uint) Selection {
	s := make(Selection, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s Selection) Has(id uint) bool {
	_, ok := s[id]
	return ok
}

func (s Selection) Toggle(id uint) {
	if s.Has(id) {
		delete(s, id)
		return
	}
	s[id] = struct{}{}
}

func (s Selection) Remove(ids ...uint) {
	for _, id := range ids {
		delete(s, id)
	}
}

// IDs returns the selected ids in ascending order.
func (s Selection) IDs() []uint {
	out := make([]uint, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Row is one rendered line. Renders counts how often the row was drawn.
type Row struct {
	Session  Session
	Selected bool
	Renders  int
}

type View struct {
	Rows []*Row
}

// Render builds a view from scratch: every row is drawn once.
func Render(sessions []Session, sel Selection) *View {
	v := &View{Rows: make([]*Row, 0, len(sessions))}
	for _, s := range sessions {
		v.Rows = append(v.Rows, &Row{Session: s, Selected: sel.Has(s.ID), Renders: 1})
	}
	return v
}

// Sessions returns the sessions currently shown, top to bottom.
func (v *View) Sessions() []Session {
	out := make([]Session, len(v.Rows))
	for i, r := range v.Rows {
		out[i] = r.Session
	}
	return out
}

func (v *View) Row(id uint) *Row {
	for _, r := range v.Rows {
		if r.Session.ID == id {
			return r
		}
	}
	return nil
}

// Apply patches the view with res: inserted sessions go on top in server
// order, updated rows are redrawn in place, everything else is left alone.
func Apply(v *View, res Result, sel Selection) {
	for _, s := range res.Updated {
		if r := v.Row(s.ID); r != nil {
			r.Session = s
			r.Selected = sel.Has(s.ID)
			r.Renders++
		}
	}

	if len(res.Inserted) == 0 {
		return
	}
	rows := make([]*Row, 0, len(res.Inserted)+len(v.Rows))
	for _, s := range res.Inserted {
		rows = append(rows, &Row{Session: s, Selected: sel.Has(s.ID), Renders: 1})
	}
	v.Rows = append(rows, v.Rows...)
}

// Stats are the totals shown above the session list.
type Stats struct {
	Sessions  int `json:"sessions"`
	Entries   int `json:"barcodes"`
	Processed int `json:"processed"`
	Pending   int `json:"pending"`
}

func (v *View) Stats() Stats {
	st := Stats{Sessions: len(v.Rows)}
	for _, r := range v.Rows {
		st.Entries += r.Session.TotalEntryCount
		st.Processed += r.Session.ProcessedCount
		st.Pending += r.Session.PendingCount
	}
	return st
}
