package stream

import "github.com/compclass/platform/internal/domain"

// ProjectRounds derives the round-event view of a raw subscription.
// Stage-changed payloads are replaced with normalized RoundTransition
// payloads; every other event passes through unchanged, preserving
// relative order. The returned channel closes when in closes.
func ProjectRounds(in <-chan Event) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		round := 0
		for ev := range in {
			if sc, ok := ev.Envelope.Message.(domain.StageChanged); ok {
				if sc.To == domain.StageInProgress {
					round++
				}
				ev.Envelope.Message = domain.RoundTransition{
					RoundNumber:    round,
					RoundLengthSec: sc.RoundLengthSec,
					IsEndOfGame:    sc.IsEndOfGame,
				}
			}
			out <- ev
		}
	}()
	return out
}
