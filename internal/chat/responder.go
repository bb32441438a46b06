// Package chat holds the response generator. It is an injectable pure
// function so a real generation service can replace it later without
// touching the chat endpoint contract.
package chat

import "math/rand/v2"

// Responder produces the reply for a user message.
type Responder func(message string) string

var cannedResponses = []string{
	"The stars are aligning beautifully for you today! ✨ Your energy is particularly strong in matters of the heart.",
	"I sense great potential in your future. The planets suggest a period of growth and new opportunities ahead. 🌟",
	"Your zodiac sign indicates you're entering a transformative phase. Embrace the changes coming your way! 🌙",
	"The cosmic energy around you suggests it's time to trust your intuition. What does your heart tell you? 💫",
	"I see abundance flowing into your life soon. Stay open to unexpected blessings from the universe. 🪐",
	"Your birth chart reveals strong creative energies. Now is the perfect time to pursue your artistic passions! 🎨",
	"The moon phases suggest you should focus on self-care and inner reflection this week. 🌙",
	"Mercury is in a favorable position for communication. It's a great time to have important conversations. 💬",
}

// CannedResponder ignores the message and returns one of the fixed
// astrology replies chosen uniformly at random.
func CannedResponder(message string) string {
	return cannedResponses[rand.IntN(len(cannedResponses))]
}

// Responses returns the fixed reply set.
func Responses() []string {
	out := make([]string, len(cannedResponses))
	copy(out, cannedResponses)
	return out
}
