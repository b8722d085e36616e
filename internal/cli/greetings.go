package cli

import (
	"math/rand"
	"time"
)

// greeting is the empty-state banner shown before the first message.
type greeting struct {
	Title    string
	Subtitle string
}

var (
	earlyMorningGreetings = []greeting{
		{"Burning the midnight oil?", "How can I assist you at this hour?"},
		{"Still awake?", "Let me help you with whatever you need."},
		{"Late night thoughts?", "I'm here to help, no matter the hour."},
	}
	morningGreetings = []greeting{
		{"Good morning!", "How can I help you start your day?"},
		{"Rise and shine!", "What can I assist you with today?"},
		{"Morning!", "How may I help you today?"},
	}
	afternoonGreetings = []greeting{
		{"Good afternoon!", "How can I help you today?"},
		{"Hope your day is going well!", "How may I help?"},
		{"Afternoon!", "What's on your mind?"},
	}
	eveningGreetings = []greeting{
		{"Good evening!", "How can I assist you tonight?"},
		{"Evening!", "Wrapping up your day? Let me help."},
		{"Good evening!", "How may I be of service?"},
	}
	nightGreetings = []greeting{
		{"Good night!", "How can I help you this evening?"},
		{"Working late?", "I'm here to help however I can."},
		{"Good night!", "What brings you here tonight?"},
	}
)

// greetingsForHour returns the greeting pool for an hour of the day.
func greetingsForHour(hour int) []greeting {
	switch {
	case hour < 5:
		return earlyMorningGreetings
	case hour < 12:
		return morningGreetings
	case hour < 17:
		return afternoonGreetings
	case hour < 21:
		return eveningGreetings
	default:
		return nightGreetings
	}
}

// timeBasedGreeting picks a random greeting appropriate to the time of day.
func timeBasedGreeting(now time.Time) greeting {
	pool := greetingsForHour(now.Hour())
	return pool[rand.Intn(len(pool))]
}
