// Package statemachine holds the booking lifecycle: which status changes exist, which actor may
// request each of them and the time guards some of them carry.
package statemachine

import (
	"fmt"
	"slices"
	"time"

	"visit/internal/domains/booking/model"
	"visit/shared/failure"
)

type Actor string

const (
	ActorOwner     Actor = "owner"
	ActorRequester Actor = "requester"
	ActorSystem    Actor = "system"
	ActorStranger  Actor = "stranger"
)

// Actors lists every actor the machine knows, strangers included.
var Actors = []Actor{ActorOwner, ActorRequester, ActorSystem, ActorStranger}

// Policy carries the configurable parts of the guards.
type Policy struct {
	// CancellationCutoff is how long before start a confirmed booking stops being cancellable.
	CancellationCutoff time.Duration
}

type guard func(b model.Booking, now time.Time, policy Policy) error

type edge struct {
	from model.Status
	to   model.Status
}

type rule struct {
	actors []Actor
	guard  guard
}

var table = map[edge]rule{
	{model.StatusPending, model.StatusConfirmed}:   {actors: []Actor{ActorOwner}},
	{model.StatusPending, model.StatusRejected}:    {actors: []Actor{ActorOwner}},
	{model.StatusPending, model.StatusCancelled}:   {actors: []Actor{ActorRequester}},
	{model.StatusConfirmed, model.StatusCancelled}: {actors: []Actor{ActorOwner, ActorRequester}, guard: beforeCutoff},
	{model.StatusConfirmed, model.StatusCompleted}: {actors: []Actor{ActorSystem, ActorOwner}, guard: afterEnd},
}

func beforeCutoff(b model.Booking, now time.Time, policy Policy) error {
	if now.After(b.StartAt.Add(-policy.CancellationCutoff)) {
		return failure.IllegalTransition(fmt.Sprintf("confirmed bookings can only be cancelled up to %s before start", policy.CancellationCutoff)) //nolint:wrapcheck
	}

	return nil
}

func afterEnd(b model.Booking, now time.Time, _ Policy) error {
	if now.Before(b.EndAt) {
		return failure.IllegalTransition("booking cannot be completed before it ends") //nolint:wrapcheck
	}

	return nil
}

type Machine struct {
	policy Policy
}

func New(policy Policy) Machine {
	return Machine{policy: policy}
}

// Allowed reports whether the table has an edge from -> to that actor may take, ignoring guards.
func Allowed(from, to model.Status, actor Actor) bool {
	r, ok := table[edge{from, to}]

	return ok && slices.Contains(r.actors, actor)
}

// Check returns nil when actor may move b to status to at now, and an IllegalTransition
// failure otherwise.
func (m Machine) Check(b model.Booking, to model.Status, actor Actor, now time.Time) error {
	if b.Status.IsTerminal() {
		return failure.IllegalTransition(fmt.Sprintf("booking is %s and cannot change", b.Status)) //nolint:wrapcheck
	}

	r, ok := table[edge{b.Status, to}]
	if !ok {
		return failure.IllegalTransition(fmt.Sprintf("booking cannot move from %s to %s", b.Status, to)) //nolint:wrapcheck
	}

	if !slices.Contains(r.actors, actor) {
		return failure.IllegalTransition(fmt.Sprintf("%s cannot move a booking from %s to %s", actor, b.Status, to)) //nolint:wrapcheck
	}

	if r.guard != nil {
		return r.guard(b, now, m.policy)
	}

	return nil
}

// Classify names the part userID plays in b. The owner snapshot on the booking decides, not the
// current property owner.
func Classify(b model.Booking, userID string) Actor {
	switch userID {
	case "":
		return ActorStranger
	case b.OwnerID:
		return ActorOwner
	case b.RequesterID:
		return ActorRequester
	default:
		return ActorStranger
	}
}
