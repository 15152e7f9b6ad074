package models

// Model is the normalized state of one polling cycle for one sport. It is
// produced by the ingest collaborator and treated as immutable by the engine;
// every derived section of one envelope is a function of the same Model.
type Model struct {
	Sport      string
	Candidates []Contest
	Players    map[string]*Player
	Entries    []Entry

	// VIPNames nil means no VIP configuration was supplied this cycle;
	// an empty non-nil slice means VIPs are configured but the list is empty.
	VIPNames []string

	VIPs      []VIPLineup
	Watchlist *Watchlist
}

// HasVIPConfig distinguishes "no VIP config" from "configured but empty".
func (m *Model) HasVIPConfig() bool {
	return m.VIPNames != nil
}
