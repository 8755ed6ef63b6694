package state

// SignedStateReserver is the advanced transformation interposed wherever a
// reserved signed state fans out to multiple sinks. It takes one extra
// reservation per additional sink so each downstream releases exactly
// once, and releases the value outright when nothing is soldered.
type SignedStateReserver struct {
	name string
}

// NewSignedStateReserver creates a named reserver.
func NewSignedStateReserver(name string) *SignedStateReserver {
	return &SignedStateReserver{name: name}
}

// Name returns the reserver's name.
func (r *SignedStateReserver) Name() string { return r.name }

// Transform takes an additional reservation for one more sink.
func (r *SignedStateReserver) Transform(rs *ReservedSignedState) *ReservedSignedState {
	return rs.GetAndReserve()
}

// Dispose releases the reservation of a state with no sinks.
func (r *SignedStateReserver) Dispose(rs *ReservedSignedState) {
	rs.Close()
}

// StateAndRoundReserver is the StateAndRound counterpart: extra
// reservations are taken on the embedded state, the round rides along.
type StateAndRoundReserver struct{}

// NewStateAndRoundReserver creates a reserver for StateAndRound fan-outs.
func NewStateAndRoundReserver() *StateAndRoundReserver {
	return &StateAndRoundReserver{}
}

// Transform takes an additional reservation for one more sink.
func (r *StateAndRoundReserver) Transform(sar StateAndRound) StateAndRound {
	return StateAndRound{State: sar.State.GetAndReserve(), Round: sar.Round}
}

// Dispose releases the reservation of a pair with no sinks.
func (r *StateAndRoundReserver) Dispose(sar StateAndRound) {
	sar.State.Close()
}
