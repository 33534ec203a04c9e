package customer

// SyncState describes how an entity relates to its copy at the remote
// payment gateway.
type SyncState string

const (
	// StateInitial marks an entity created locally and never confirmed by
	// the gateway.
	StateInitial SyncState = "initial"
	// StateSaved marks an entity confirmed identical to the gateway copy.
	StateSaved SyncState = "saved"
	// StateChanged marks an entity modified locally since it was last
	// saved; it needs a push.
	StateChanged SyncState = "changed"
	// StateLocal marks an entity that is intentionally never synchronized,
	// such as a draft that must not reach the gateway.
	StateLocal SyncState = "local"
)

// ProcessorItem tracks the per-entity synchronization state against the
// remote gateway. The zero value is a local draft with no remote identity.
type ProcessorItem struct {
	ID    string    `json:"id,omitempty"`
	State SyncState `json:"state"`
}

// Remote reports whether the entity is known to the gateway.
func (p *ProcessorItem) Remote() bool {
	return p.ID != ""
}

// MarkChanged promotes the entity to the changed state. It is a no-op for
// entities the gateway does not know about and for intentionally local
// entities.
func (p *ProcessorItem) MarkChanged() {
	if p.ID == "" || p.State == StateLocal {
		return
	}
	p.State = StateChanged
}

// Advance merges the state confirmed by the gateway, moving forward only:
// a saved entity is never downgraded, a local entity stays local, and a
// remote id once assigned is kept.
func (p *ProcessorItem) Advance(confirmed ProcessorItem) {
	if p.ID == "" {
		p.ID = confirmed.ID
	}
	if p.State == StateLocal || p.State == StateSaved {
		return
	}
	if confirmed.State == StateSaved {
		p.State = StateSaved
	}
}
