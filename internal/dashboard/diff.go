package dashboard

// Result is the outcome of comparing the rendered list with a fresh server
// response.
type Result struct {
	// Inserted holds sessions unknown locally, in server order.
	Inserted []Session
	// Updated holds the new state of sessions whose tracked fields moved.
	Updated      []Session
	UnchangedIDs []uint
}

func (r Result) Empty() bool {
	return len(r.Inserted) == 0 && len(r.Updated) == 0
}

// Diff classifies every session in cur against old. Sessions present in
// old but missing from cur are not reported; the silent path never
// removes rows.
func Diff(old, cur []Session) Result {
	known := make(map[uint]Session, len(old))
	for _, s := range old {
		known[s.ID] = s
	}

	var res Result
	for _, s := range cur {
		prev, ok := known[s.ID]
		switch {
		case !ok:
			res.Inserted = append(res.Inserted, s)
		case changed(prev, s):
			res.Updated = append(res.Updated, s)
		default:
			res.UnchangedIDs = append(res.UnchangedIDs, s.ID)
		}
	}
	return res
}
