package processor

import (
	"github.com/enhancv/go-subscriptions/pkg/customer"
)

// confirmedItem interprets a processor marker returned by the gateway: any
// entity the gateway knows by id is, by definition, saved.
func confirmedItem(item customer.ProcessorItem) customer.ProcessorItem {
	if item.ID != "" {
		item.State = customer.StateSaved
	}
	return item
}

// advance pairs a local marker with its gateway confirmation, moving state
// forward only.
func advance(local, confirmed customer.ProcessorItem) customer.ProcessorItem {
	local.Advance(confirmedItem(confirmed))
	return local
}

// mergeRemote merges an authoritative remote snapshot over local state, as
// used by a load. Remote content wins entirely; every remote-known entity
// comes back saved. Local entities survive only when intentionally local —
// lingering initial drafts the remote does not know about are pruned.
func mergeRemote(local, remote *customer.Customer) *customer.Customer {
	remote.Processor = confirmedItem(remote.Processor)

	for _, a := range remote.Addresses {
		a.Processor = confirmedItem(a.Processor)
	}
	for _, la := range local.Addresses {
		if la.Processor.State == customer.StateLocal && remote.AddressByID(la.EntityID) == nil {
			remote.Addresses = append(remote.Addresses, la)
		}
	}

	for _, pm := range remote.PaymentMethods {
		base := pm.Base()
		base.Processor = confirmedItem(base.Processor)
	}
	for _, lpm := range local.PaymentMethods {
		base := lpm.Base()
		if base.Processor.State == customer.StateLocal && remote.PaymentMethodByID(base.EntityID) == nil {
			remote.PaymentMethods = append(remote.PaymentMethods, lpm)
		}
	}

	for _, sub := range remote.Subscriptions {
		sub.Processor = confirmedItem(sub.Processor)
		for _, d := range sub.Discounts {
			d.Base().Processor = confirmedItem(d.Base().Processor)
		}
	}
	for _, ls := range local.Subscriptions {
		if ls.Processor.State == customer.StateLocal && remote.SubscriptionByID(ls.EntityID) == nil {
			remote.Subscriptions = append(remote.Subscriptions, ls)
		}
	}

	for _, tx := range remote.Transactions {
		base := tx.Base()
		base.Processor = confirmedItem(base.Processor)
	}

	return remote
}

// reconcileConfirmed merges a gateway confirmation after a successful
// save, cancel or refund. Confirmed content is authoritative; per-entity
// state moves forward from the local state (initial/changed become saved,
// saved never downgrades, local never participates). Intentionally local
// entities absent from the confirmation are kept.
func reconcileConfirmed(local, confirmed *customer.Customer) *customer.Customer {
	confirmed.Processor = advance(local.Processor, confirmed.Processor)

	for _, a := range confirmed.Addresses {
		if la := local.AddressByID(a.EntityID); la != nil {
			a.Processor = advance(la.Processor, a.Processor)
		} else {
			a.Processor = confirmedItem(a.Processor)
		}
	}
	for _, la := range local.Addresses {
		if la.Processor.State == customer.StateLocal && confirmed.AddressByID(la.EntityID) == nil {
			confirmed.Addresses = append(confirmed.Addresses, la)
		}
	}

	for _, pm := range confirmed.PaymentMethods {
		base := pm.Base()
		if lpm := local.PaymentMethodByID(base.EntityID); lpm != nil {
			base.Processor = advance(lpm.Base().Processor, base.Processor)
		} else {
			base.Processor = confirmedItem(base.Processor)
		}
	}
	for _, lpm := range local.PaymentMethods {
		base := lpm.Base()
		if base.Processor.State == customer.StateLocal && confirmed.PaymentMethodByID(base.EntityID) == nil {
			confirmed.PaymentMethods = append(confirmed.PaymentMethods, lpm)
		}
	}

	for _, sub := range confirmed.Subscriptions {
		localSub := local.SubscriptionByID(sub.EntityID)
		if localSub != nil {
			sub.Processor = advance(localSub.Processor, sub.Processor)
		} else {
			sub.Processor = confirmedItem(sub.Processor)
		}
		reconcileDiscounts(localSub, sub)
	}
	for _, ls := range local.Subscriptions {
		if ls.Processor.State == customer.StateLocal && confirmed.SubscriptionByID(ls.EntityID) == nil {
			confirmed.Subscriptions = append(confirmed.Subscriptions, ls)
		}
	}

	for _, tx := range confirmed.Transactions {
		base := tx.Base()
		base.Processor = confirmedItem(base.Processor)
	}

	return confirmed
}

func reconcileDiscounts(localSub, confirmedSub *customer.Subscription) {
	for _, d := range confirmedSub.Discounts {
		base := d.Base()
		var localState *customer.ProcessorItem
		if localSub != nil {
			for _, ld := range localSub.Discounts {
				if ld.Base().EntityID == base.EntityID {
					item := ld.Base().Processor
					localState = &item
					break
				}
			}
		}
		if localState != nil {
			base.Processor = advance(*localState, base.Processor)
		} else {
			base.Processor = confirmedItem(base.Processor)
		}
	}
	if localSub == nil {
		return
	}
	for _, ld := range localSub.Discounts {
		if ld.Base().Processor.State != customer.StateLocal {
			continue
		}
		found := false
		for _, d := range confirmedSub.Discounts {
			if d.Base().EntityID == ld.Base().EntityID {
				found = true
				break
			}
		}
		if !found {
			confirmedSub.Discounts = append(confirmedSub.Discounts, ld)
		}
	}
}
