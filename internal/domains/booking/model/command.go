package model

import "visit/shared/interval"

// Command is one of the five booking mutations: Reserve, Confirm, Reject, Cancel or Complete.
// The set is closed; other packages cannot add variants.
type Command interface {
	command()
}

type Reserve struct {
	PropertyID  string
	RequesterID string
	Interval    interval.Interval
}

type Confirm struct {
	BookingID string
	ActorID   string
}

type Reject struct {
	BookingID string
	ActorID   string
}

type Cancel struct {
	BookingID string
	ActorID   string
}

// Complete closes a confirmed booking after it ends. System marks the periodic sweep, which acts
// without being the owner.
type Complete struct {
	BookingID string
	ActorID   string
	System    bool
}

func (Reserve) command()  {}
func (Confirm) command()  {}
func (Reject) command()   {}
func (Cancel) command()   {}
func (Complete) command() {}
