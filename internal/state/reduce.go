package state

import "bookswap-client/internal/domain"

// reduce applies one event to a snapshot and returns the next snapshot.
// It is a pure function: the input state is never mutated and no dispatching
// happens from inside it. now is the engine clock in Unix milliseconds.
func reduce(s *State, ev Event, now int64) *State {
	switch e := ev.(type) {
	case SwapsFetched:
		return reduceSwapsFetched(s, e, now)
	case SwapAdded:
		return reduceUpsert(s, e.Swap, now, true)
	case SwapUpdated:
		return reduceUpsert(s, e.Swap, now, false)
	case SwapRemoved:
		return reduceSwapRemoved(s, e)
	case ProposalsFetched:
		return reduceProposalsFetched(s, e)
	case ProposalAdded:
		return reduceProposalAppend(s, e.Proposal)
	case ProposalUpdated:
		return reduceProposalReplace(s, e.Proposal)
	case SwapViewed:
		return reduceSwapViewed(s, e)
	case StatusPushed:
		return reduceStatusPushed(s, e, now)
	case CompletionUpdated:
		return reduceCompletionUpdated(s, e)
	case EscrowUpdated:
		return reduceEscrowUpdated(s, e)
	case CacheInvalidated:
		next := s.clone()
		next.Freshness = next.Freshness.Invalidate()
		return next
	case StatusChangeRequested:
		return reduceStatusChangeRequested(s, e, now)
	case StatusChangeFailed:
		return reduceStatusChangeFailed(s, e)
	case SwapCreateStarted:
		return reduceSwapCreateStarted(s, e, now)
	case SwapCreateSucceeded:
		return reduceSwapCreateSucceeded(s, e)
	case SwapCreateFailed:
		return reduceSwapCreateFailed(s, e)
	case ProposalCreateStarted:
		return reduceProposalCreateStarted(s, e, now)
	case ProposalCreateSucceeded:
		return reduceProposalCreateSucceeded(s, e)
	case ProposalCreateFailed:
		return reduceProposalCreateFailed(s, e)
	case PaymentStarted:
		return reducePaymentStarted(s, e, now)
	case PaymentSettled:
		return reducePaymentSettled(s, e)
	case PaymentFailed:
		return reducePaymentFailed(s, e, now)
	case CompletionRequested:
		return reduceCompletionRequested(s, e, now)
	case CompletionRolledBack:
		return reduceCompletionRolledBack(s, e)
	default:
		return s
	}
}

// --- entity store ---

func reduceSwapsFetched(s *State, e SwapsFetched, now int64) *State {
	next := s.clone()
	next.Swaps = cloneSwaps(e.Swaps)
	next.Freshness = next.Freshness.markFetchedMillis(now)
	next.Indexes = buildIndexes(next.Swaps)
	return next
}

// reduceUpsert inserts-or-replaces a swap by id. New entries are prepended
// for adds and for updates on unknown ids; both operations are total.
func reduceUpsert(s *State, sw *domain.Swap, now int64, recordInitial bool) *State {
	if sw == nil {
		return s
	}
	next := s.clone()
	incoming := sw.Clone()

	if i := next.swapIndex(incoming.ID); i >= 0 {
		prev := next.Swaps[i]
		next.Swaps[i] = incoming
		if prev.Status != incoming.Status {
			appendHistory(next, incoming.ID, incoming.Status, now, "")
		}
	} else {
		next.Swaps = append([]*domain.Swap{incoming}, next.Swaps...)
		if recordInitial {
			appendHistory(next, incoming.ID, incoming.Status, now, incoming.Proposer.ID)
		}
	}
	next.Indexes = buildIndexes(next.Swaps)
	return next
}

func reduceSwapRemoved(s *State, e SwapRemoved) *State {
	i := s.swapIndex(e.ID)
	if i < 0 {
		return s
	}
	next := s.clone()
	next.Swaps = append(next.Swaps[:i], next.Swaps[i+1:]...)
	delete(next.Proposals, e.ID)
	delete(next.History, e.ID)
	delete(next.Payments, e.ID)
	delete(next.Escrows, e.ID)
	if next.ViewedSwapID == e.ID {
		next.ViewedSwapID = ""
		next.ViewedProposals = nil
	}
	next.Indexes = buildIndexes(next.Swaps)
	return next
}

// --- proposal ledger ---

func reduceProposalsFetched(s *State, e ProposalsFetched) *State {
	if e.SwapID == "" {
		return s
	}
	next := s.clone()
	next.Proposals[e.SwapID] = cloneProposals(e.Proposals)
	mirrorViewed(next, e.SwapID)
	return next
}

func reduceProposalAppend(s *State, p *domain.Proposal) *State {
	if p == nil || p.SwapID == "" {
		return s
	}
	next := s.clone()
	list := next.Proposals[p.SwapID]
	next.Proposals[p.SwapID] = append(append([]*domain.Proposal(nil), list...), p.Clone())
	mirrorViewed(next, p.SwapID)
	return next
}

func reduceProposalReplace(s *State, p *domain.Proposal) *State {
	if p == nil || p.SwapID == "" {
		return s
	}
	list := s.Proposals[p.SwapID]
	i := proposalIndex(list, p.ID)
	if i < 0 {
		return s
	}
	next := s.clone()
	replaced := append([]*domain.Proposal(nil), list...)
	replaced[i] = p.Clone()
	next.Proposals[p.SwapID] = replaced
	mirrorViewed(next, p.SwapID)
	return next
}

func reduceSwapViewed(s *State, e SwapViewed) *State {
	next := s.clone()
	next.ViewedSwapID = e.SwapID
	if e.SwapID == "" {
		next.ViewedProposals = nil
		return next
	}
	next.ViewedProposals = append([]*domain.Proposal(nil), next.Proposals[e.SwapID]...)
	return next
}

// mirrorViewed keeps the viewed shadow list in lockstep with the source list.
func mirrorViewed(next *State, swapID string) {
	if next.ViewedSwapID != swapID {
		return
	}
	next.ViewedProposals = append([]*domain.Proposal(nil), next.Proposals[swapID]...)
}

func proposalIndex(list []*domain.Proposal, id string) int {
	for i, p := range list {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// --- status & completion ---

func reduceStatusPushed(s *State, e StatusPushed, now int64) *State {
	i := s.swapIndex(e.SwapID)
	if i < 0 {
		return s
	}
	// Pushes without a server timestamp are stamped with the engine clock.
	ts := e.ServerTimestamp
	if ts == 0 {
		ts = now
	}
	next := s.clone()
	sw := next.Swaps[i].Clone()
	applyStatus(sw, e.Status, ts)
	next.Swaps[i] = sw
	appendHistory(next, e.SwapID, e.Status, ts, "")

	// An authoritative status settles any in-flight optimistic change.
	key := statusKey(e.SwapID)
	delete(next.Pending, key)
	delete(next.Errors, key)

	next.Indexes = buildIndexes(next.Swaps)
	return next
}

func reduceCompletionUpdated(s *State, e CompletionUpdated) *State {
	i := s.swapIndex(e.SwapID)
	if i < 0 {
		return s
	}
	next := s.clone()
	sw := next.Swaps[i].Clone()

	if e.Completion == nil {
		// Clearing the overlay never demotes status.
		sw.Completion = nil
	} else {
		comp := *e.Completion
		comp.RelatedSwapIDs = append([]string(nil), e.Completion.RelatedSwapIDs...)
		sw.Completion = &comp
		if comp.CompletedAt > 0 && sw.Status != domain.SwapStatusCompleted {
			applyStatus(sw, domain.SwapStatusCompleted, comp.CompletedAt)
			appendHistory(next, e.SwapID, domain.SwapStatusCompleted, comp.CompletedAt, comp.CompletedBy)
		}
	}
	next.Swaps[i] = sw

	// The authoritative overlay settles any in-flight optimistic completion.
	key := completionKey(e.SwapID)
	delete(next.Pending, key)
	delete(next.Errors, key)

	next.Indexes = buildIndexes(next.Swaps)
	return next
}

func reduceEscrowUpdated(s *State, e EscrowUpdated) *State {
	if e.Escrow == nil || e.Escrow.SwapID == "" {
		return s
	}
	next := s.clone()
	next.Escrows[e.Escrow.SwapID] = e.Escrow.Clone()
	return next
}

// --- optimistic status change ---

func reduceStatusChangeRequested(s *State, e StatusChangeRequested, now int64) *State {
	i := s.swapIndex(e.SwapID)
	if i < 0 {
		return s
	}
	next := s.clone()
	sw := next.Swaps[i].Clone()

	key := statusKey(e.SwapID)
	if _, inFlight := next.Pending[key]; !inFlight {
		next.Pending[key] = &PendingMutation{
			Key:            key,
			Kind:           MutationStatusChange,
			SwapID:         e.SwapID,
			OriginalStatus: sw.Status,
			PrevSwap:       s.Swaps[i].Clone(),
			PrevHistory:    append([]domain.StatusTransition(nil), s.History[e.SwapID]...),
			StartedAt:      now,
		}
	}
	delete(next.Errors, key)

	applyStatus(sw, e.Status, now)
	next.Swaps[i] = sw
	appendHistory(next, e.SwapID, e.Status, now, e.Actor)
	next.Indexes = buildIndexes(next.Swaps)
	return next
}

func reduceStatusChangeFailed(s *State, e StatusChangeFailed) *State {
	key := statusKey(e.SwapID)
	rec, inFlight := s.Pending[key]
	if !inFlight {
		return s // terminal transition already processed
	}
	next := s.clone()
	delete(next.Pending, key)
	if e.Err != nil {
		next.Errors[key] = e.Err
	}

	original := e.OriginalStatus
	if original == "" {
		original = rec.OriginalStatus
	}
	if i := next.swapIndex(e.SwapID); i >= 0 {
		restored := rec.PrevSwap.Clone()
		restored.Status = original
		next.Swaps[i] = restored
	}
	next.History[e.SwapID] = rec.PrevHistory
	next.Indexes = buildIndexes(next.Swaps)
	return next
}

// --- optimistic swap creation ---

func reduceSwapCreateStarted(s *State, e SwapCreateStarted, now int64) *State {
	if e.Swap == nil || e.PendingID == "" {
		return s
	}
	next := s.clone()
	sw := e.Swap.Clone()
	sw.ID = e.PendingID
	next.Swaps = append([]*domain.Swap{sw}, next.Swaps...)
	next.Pending[e.PendingID] = &PendingMutation{
		Key:       e.PendingID,
		Kind:      MutationSwapCreate,
		SwapID:    e.PendingID,
		StartedAt: now,
	}
	delete(next.Errors, e.PendingID)
	appendHistory(next, e.PendingID, sw.Status, now, sw.Proposer.ID)
	next.Indexes = buildIndexes(next.Swaps)
	return next
}

func reduceSwapCreateSucceeded(s *State, e SwapCreateSucceeded) *State {
	if _, inFlight := s.Pending[e.PendingID]; !inFlight {
		return s
	}
	next := s.clone()
	delete(next.Pending, e.PendingID)
	if e.Swap == nil {
		return next
	}

	// The pending entry may be gone if a full refresh replaced the collection
	// mid-flight; upsert by the server id so the confirmation never duplicates.
	authoritative := e.Swap.Clone()
	if i := next.swapIndex(e.PendingID); i >= 0 {
		next.Swaps[i] = authoritative
	} else if i := next.swapIndex(authoritative.ID); i >= 0 {
		next.Swaps[i] = authoritative
	} else {
		next.Swaps = append([]*domain.Swap{authoritative}, next.Swaps...)
	}
	// Carry the optimistic history over to the server-assigned id.
	if h, ok := next.History[e.PendingID]; ok && authoritative.ID != e.PendingID {
		delete(next.History, e.PendingID)
		next.History[authoritative.ID] = h
	}
	next.Indexes = buildIndexes(next.Swaps)
	return next
}

func reduceSwapCreateFailed(s *State, e SwapCreateFailed) *State {
	if _, inFlight := s.Pending[e.PendingID]; !inFlight {
		return s
	}
	next := s.clone()
	delete(next.Pending, e.PendingID)
	if e.Err != nil {
		next.Errors[e.PendingID] = e.Err
	}
	if i := next.swapIndex(e.PendingID); i >= 0 {
		next.Swaps = append(next.Swaps[:i], next.Swaps[i+1:]...)
	}
	delete(next.History, e.PendingID)
	next.Indexes = buildIndexes(next.Swaps)
	return next
}

// --- optimistic proposal submission ---

func reduceProposalCreateStarted(s *State, e ProposalCreateStarted, now int64) *State {
	if e.Proposal == nil || e.PendingID == "" || e.Proposal.SwapID == "" {
		return s
	}
	next := s.clone()
	p := e.Proposal.Clone()
	p.ID = e.PendingID
	list := next.Proposals[p.SwapID]
	next.Proposals[p.SwapID] = append(append([]*domain.Proposal(nil), list...), p)
	next.Pending[e.PendingID] = &PendingMutation{
		Key:       e.PendingID,
		Kind:      MutationProposalSubmit,
		SwapID:    p.SwapID,
		StartedAt: now,
	}
	delete(next.Errors, e.PendingID)
	mirrorViewed(next, p.SwapID)
	return next
}

func reduceProposalCreateSucceeded(s *State, e ProposalCreateSucceeded) *State {
	rec, inFlight := s.Pending[e.PendingID]
	if !inFlight {
		return s
	}
	next := s.clone()
	delete(next.Pending, e.PendingID)
	if e.Proposal == nil {
		return next
	}

	// As with swap creation, a refresh may have replaced the list mid-flight
	// and already carry the server record; replace by server id, never append
	// a second copy.
	list := append([]*domain.Proposal(nil), next.Proposals[rec.SwapID]...)
	if i := proposalIndex(list, e.PendingID); i >= 0 {
		list[i] = e.Proposal.Clone()
	} else if i := proposalIndex(list, e.Proposal.ID); i >= 0 {
		list[i] = e.Proposal.Clone()
	} else {
		list = append(list, e.Proposal.Clone())
	}
	next.Proposals[rec.SwapID] = list
	mirrorViewed(next, rec.SwapID)
	return next
}

func reduceProposalCreateFailed(s *State, e ProposalCreateFailed) *State {
	rec, inFlight := s.Pending[e.PendingID]
	if !inFlight {
		return s
	}
	next := s.clone()
	delete(next.Pending, e.PendingID)
	if e.Err != nil {
		next.Errors[e.PendingID] = e.Err
	}
	list := append([]*domain.Proposal(nil), next.Proposals[rec.SwapID]...)
	if i := proposalIndex(list, e.PendingID); i >= 0 {
		list = append(list[:i], list[i+1:]...)
	}
	next.Proposals[rec.SwapID] = list
	mirrorViewed(next, rec.SwapID)
	return next
}

// --- optimistic payment ---

func reducePaymentStarted(s *State, e PaymentStarted, now int64) *State {
	if e.Payment == nil || e.Payment.SwapID == "" {
		return s
	}
	next := s.clone()
	swapID := e.Payment.SwapID
	key := paymentKey(swapID)

	if _, inFlight := next.Pending[key]; !inFlight {
		rec := &PendingMutation{
			Key:       key,
			Kind:      MutationPayment,
			SwapID:    swapID,
			StartedAt: now,
		}
		if prev, ok := next.Payments[swapID]; ok {
			rec.PrevPayment = prev.Clone()
		}
		if prev, ok := next.Escrows[swapID]; ok {
			rec.PrevEscrow = prev.Clone()
		}
		next.Pending[key] = rec
	}
	delete(next.Errors, key)

	txn := e.Payment.Clone()
	txn.Status = domain.PaymentPending
	if txn.CreatedAt == 0 {
		txn.CreatedAt = now
	}
	next.Payments[swapID] = txn
	next.Escrows[swapID] = &domain.EscrowAccount{
		SwapID:   swapID,
		Amount:   txn.Amount,
		Currency: txn.Currency,
		Status:   domain.EscrowAwaiting,
	}
	return next
}

func reducePaymentSettled(s *State, e PaymentSettled) *State {
	key := paymentKey(e.SwapID)
	if _, inFlight := s.Pending[key]; !inFlight {
		return s
	}
	next := s.clone()
	delete(next.Pending, key)
	delete(next.Errors, key)

	if txn, ok := next.Payments[e.SwapID]; ok {
		settled := txn.Clone()
		settled.Status = domain.PaymentSettled
		settled.Reference = e.Reference
		settled.SettledAt = e.SettledAt
		next.Payments[e.SwapID] = settled
	}
	if esc, ok := next.Escrows[e.SwapID]; ok {
		funded := esc.Clone()
		funded.Status = domain.EscrowFunded
		funded.Reference = e.Reference
		funded.FundedAt = e.SettledAt
		next.Escrows[e.SwapID] = funded
	}
	return next
}

func reducePaymentFailed(s *State, e PaymentFailed, now int64) *State {
	key := paymentKey(e.SwapID)
	rec, inFlight := s.Pending[key]
	if !inFlight {
		return s
	}
	next := s.clone()
	delete(next.Pending, key)
	if e.Err != nil {
		next.Errors[key] = e.Err
	} else {
		next.Errors[key] = &FlowError{Code: "payment_failed", Message: e.Reason, At: now}
	}

	if rec.PrevPayment != nil {
		next.Payments[e.SwapID] = rec.PrevPayment.Clone()
	} else {
		delete(next.Payments, e.SwapID)
	}
	if rec.PrevEscrow != nil {
		next.Escrows[e.SwapID] = rec.PrevEscrow.Clone()
	} else {
		delete(next.Escrows, e.SwapID)
	}
	return next
}

// --- optimistic completion ---

func reduceCompletionRequested(s *State, e CompletionRequested, now int64) *State {
	i := s.swapIndex(e.SwapID)
	if i < 0 {
		return s
	}
	next := s.clone()
	sw := next.Swaps[i].Clone()

	key := completionKey(e.SwapID)
	if _, inFlight := next.Pending[key]; !inFlight {
		next.Pending[key] = &PendingMutation{
			Key:            key,
			Kind:           MutationCompletion,
			SwapID:         e.SwapID,
			OriginalStatus: sw.Status,
			PrevSwap:       s.Swaps[i].Clone(),
			PrevHistory:    append([]domain.StatusTransition(nil), s.History[e.SwapID]...),
			StartedAt:      now,
		}
	}
	delete(next.Errors, key)

	sw.Completion = &domain.Completion{
		CompletedAt: now,
		CompletedBy: e.Actor,
		Type:        e.Type,
		ProposalID:  e.ProposalID,
	}
	applyStatus(sw, domain.SwapStatusCompleted, now)
	next.Swaps[i] = sw
	appendHistory(next, e.SwapID, domain.SwapStatusCompleted, now, e.Actor)
	next.Indexes = buildIndexes(next.Swaps)
	return next
}

func reduceCompletionRolledBack(s *State, e CompletionRolledBack) *State {
	key := completionKey(e.SwapID)
	rec, inFlight := s.Pending[key]
	if !inFlight {
		return s
	}
	next := s.clone()
	delete(next.Pending, key)
	if e.Err != nil {
		next.Errors[key] = e.Err
	}

	original := e.OriginalStatus
	if original == "" {
		original = rec.OriginalStatus
	}
	if i := next.swapIndex(e.SwapID); i >= 0 {
		restored := rec.PrevSwap.Clone()
		restored.Status = original
		next.Swaps[i] = restored
	}
	next.History[e.SwapID] = rec.PrevHistory
	next.Indexes = buildIndexes(next.Swaps)
	return next
}

// --- helpers ---

// applyStatus sets the lifecycle status and maintains the timeline fields:
// responded-at is set once on the first transition out of pending, while
// completed-at tracks the completed status exactly — stamped on entry,
// cleared on any transition away.
func applyStatus(sw *domain.Swap, status domain.SwapStatus, at int64) {
	sw.Status = status
	if status == domain.SwapStatusAccepted || status == domain.SwapStatusRejected {
		if sw.Timeline.RespondedAt == 0 {
			sw.Timeline.RespondedAt = at
		}
	}
	if status == domain.SwapStatusCompleted {
		if sw.Timeline.CompletedAt == 0 {
			sw.Timeline.CompletedAt = at
		}
	} else {
		sw.Timeline.CompletedAt = 0
	}
}

func appendHistory(next *State, swapID string, status domain.SwapStatus, at int64, actor string) {
	entry := domain.StatusTransition{Status: status, At: at, Actor: actor}
	next.History[swapID] = append(append([]domain.StatusTransition(nil), next.History[swapID]...), entry)
}
