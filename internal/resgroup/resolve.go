package resgroup

// Resolution is the decision of which environment slot a request addresses.
type Resolution struct {
	Index  *int
	Exists bool
}

// Resolve decides which environment a request addresses, given the discovered
// state. It is a pure function: any interactive selection happens before it,
// and orchestration only ever receives the already-resolved decision.
//
// Rules:
//   - an explicit requested index always wins, whether or not it exists yet;
//   - with no request and no existing environments, the unindexed slot is used;
//   - with no request and existing environments, the first discovered one
//     (by listing order) is reused.
func Resolve(requested *int, discovered []Discovered) Resolution {
	if requested != nil {
		for _, d := range discovered {
			if d.Index != nil && *d.Index == *requested {
				return Resolution{Index: requested, Exists: true}
			}
		}
		return Resolution{Index: requested, Exists: false}
	}

	if len(discovered) == 0 {
		return Resolution{Index: nil, Exists: false}
	}

	first := discovered[0]
	return Resolution{Index: first.Index, Exists: true}
}
