package config

import "time"

const (
	// Backend client-wide timeout
	BackendTimeout = 300 * time.Second

	// AI request timeout
	RequestTimeout = 90 * time.Second

	// Completion parameters
	MaxTokens   = 1000
	Temperature = 0.7

	// Returned when the provider answers without any choice
	FallbackReply = "Sorry, I couldn't process your request."

	// Chat panel messages
	GreetingReply = "Hello! I'm your AI financial assistant. How can I help you with your finances today?"
	ApologyReply  = "I'm sorry, I'm having trouble connecting right now. Please try again in a moment."

	// Share of the net balance counted as savings on the dashboard, in percent
	SavingsSharePercent = 20

	// Ephemeral chat panel size
	MaxHistoryMessages = 50

	// Telegram limits
	MaxTelegramMessageLen = 4096

	// HTTP server
	ReadHeaderTimeout = 10 * time.Second
	ShutdownTimeout   = 15 * time.Second

	// Max accepted /api/chat body
	MaxChatBodyBytes = 1 << 20
)

// SystemPrompt is prepended to every conversation forwarded to the provider.
const SystemPrompt = `You are a helpful personal finance assistant. You provide practical, accurate financial advice and help users understand their finances better. Always be supportive and encouraging while being realistic about financial goals. Keep responses concise but informative. Format your responses in a friendly, conversational tone.`
