package labstate

// NextLabState decides when a run of OBX segments under one or more
// OBRs should be split into the next distinct lab result. Splits
// happen on:
//
//  1. a new OBR
//  2. a new OBX within an OBR whose code differs from the last one
//  3. a new OBX whose sequence isn't a continuation of the last one
//
// A zero NextLabState is ready to use.
type NextLabState struct {
	activeIndex int
	active      bool
	lastSeq     Sequence
	lastCode    string
}

// Index is the index of the lab result currently being accumulated.
func (n *NextLabState) Index() int {
	return n.activeIndex
}

func (n *NextLabState) bump() {
	n.activeIndex++
	n.active = false
	n.lastSeq = Sequence{}
}

// TransitionNewOBR must be called whenever a new OBR segment begins.
func (n *NextLabState) TransitionNewOBR() {
	if n.active {
		n.bump()
	}
}

// TransitionNewOBX must be called for every OBX segment, in order.
// sequence is the raw OBX-4.1 value; code is the preferred lab code
// for this OBX, used to force a split when it changes mid-OBR even if
// the sequence looks continuous.
func (n *NextLabState) TransitionNewOBX(sequence, code string) {
	this := NewSequence(sequence)
	if n.active {
		if n.lastCode != code {
			n.bump()
		} else if !n.lastSeq.InSequenceWith(this) {
			n.bump()
		}
	}
	n.lastSeq = this
	n.active = true
	n.lastCode = code
}
