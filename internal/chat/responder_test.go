package chat_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/astrochat/astrochat-backend/internal/chat"
)

func TestCannedResponderDrawsFromFixedSet(t *testing.T) {
	responses := chat.Responses()
	require.Len(t, responses, 8)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		reply := chat.CannedResponder("anything")
		require.Contains(t, responses, reply)
		seen[reply] = true
	}
	// 200 uniform draws from 8 options miss one with negligible odds.
	require.Greater(t, len(seen), 1)
}
