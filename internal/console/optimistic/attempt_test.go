package optimistic

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttempt_ServerWins(t *testing.T) {
	field := []string{"b1"}
	server := []string{"b1", "b2"} // server reordered/deduplicated version

	var seenDuringCall []string
	err := Attempt(context.Background(), &field, []string{"b2", "b1"}, func(context.Context) (*[]string, error) {
		seenDuringCall = append([]string(nil), field...)
		return &server, nil
	})

	require.NoError(t, err)
	// Optimistic value was visible while the call was in flight.
	assert.Equal(t, []string{"b2", "b1"}, seenDuringCall)
	// The confirmed server value replaced the guess, not the caller's next.
	assert.Equal(t, server, field)
}

func TestAttempt_NoBodyKeepsOptimisticValue(t *testing.T) {
	field := "available"
	err := Attempt(context.Background(), &field, "rented", func(context.Context) (*string, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "rented", field)
}

func TestAttempt_RollbackRestoresSnapshotExactly(t *testing.T) {
	type holder struct {
		RentedBy string
		Note     string
	}
	field := holder{RentedBy: "u1", Note: "pristine"}
	pre := field

	boom := errors.New("network down")
	err := Attempt(context.Background(), &field, holder{RentedBy: "u2"}, func(context.Context) (*holder, error) {
		return nil, boom
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, pre, field)
}

// Two rapid mutations of the same field race; the engine does not queue
// them, so the last response to arrive wins regardless of issue order.
func TestAttempt_LastResponseWins(t *testing.T) {
	field := []string{}

	// Simulate the cooperative model: both mutations are applied
	// immediately, their responses arrive later and out of order.
	var completions []func()

	start := func(next, serverResp []string) {
		_ = Attempt(context.Background(), &field, next, func(context.Context) (*[]string, error) {
			resp := serverResp
			completions = append(completions, func() { field = resp })
			return nil, nil
		})
	}

	// toggle on, then toggle off before the first response lands
	start([]string{"x"}, []string{"x"})
	start([]string{}, []string{})

	// responses arrive in reverse order: off first, then on
	completions[1]()
	completions[0]()

	assert.Equal(t, []string{"x"}, field, "last arriving response must win")
}
