package service

import "fmt"

// SystemPrompt is the assistant persona. Retrieved knowledge and web search
// results are appended to it per turn.
const SystemPrompt = `You are a helpful and knowledgeable wellness assistant for Tanya's Wellness Practice in Primrose Hill, London.

Your role is to:
1. Answer questions about classes, schedules, pricing, and services
2. Help users understand the benefits of different practices (yoga, martial arts, meditation)
3. Provide guidance on booking classes and private sessions
4. Share wellness tips and advice
5. Be warm, encouraging, and supportive
6. Direct users to book online or contact Tanya directly for personalized advice

Guidelines:
- Be conversational and friendly but professional
- Use the provided context from the knowledge base to answer questions accurately
- If you don't know something, admit it and suggest contacting Tanya directly
- Encourage users to try their first free class
- Emphasize the welcoming, inclusive nature of the practice
- Keep responses concise but informative
- When discussing booking, remind users they can book through the website
- Be mindful of the calming, wellness-focused atmosphere

When providing information, cite specific details from the knowledge base when available.
If asked about current information (like weather, news, or latest wellness trends), let the user know you can search for that information.`

// Greeting is the assistant's opening line in the chat widget. It is never
// sent to the model unless the caller includes it in the history.
const Greeting = "Hello! I'm your wellness assistant. I can help you learn about our classes, book sessions, or answer any questions about Tanya's practice. How can I assist you today?"

const (
	DefaultContactEmail = "hello@tanyawellness.com"
	DefaultContactPhone = "+44 20 1234 5678"
)

// Contact is where users are sent when the assistant cannot answer.
type Contact struct {
	Email string
	Phone string
}

// DefaultContact returns the practice's published contact details.
func DefaultContact() Contact {
	return Contact{Email: DefaultContactEmail, Phone: DefaultContactPhone}
}

// Apology is the fixed reply shown when a chat turn fails.
func (c Contact) Apology() string {
	email, phone := c.Email, c.Phone
	if email == "" {
		email = DefaultContactEmail
	}
	if phone == "" {
		phone = DefaultContactPhone
	}
	return fmt.Sprintf("I apologize, but I'm having trouble responding right now. Please try again in a moment, or contact us directly at %s or %s.", email, phone)
}

// BuildSystemPrompt appends the knowledge and search sections that are
// non-empty, knowledge first.
func BuildSystemPrompt(knowledgeContext, searchContext string) string {
	prompt := SystemPrompt
	if knowledgeContext != "" {
		prompt += "\n\nRelevant Information from Knowledge Base:\n\n" + knowledgeContext +
			"\n\nUse this information to answer the user's question accurately."
	}
	if searchContext != "" {
		prompt += "\n\nCurrent Information from Web Search:\n\n" + searchContext +
			"\n\nUse this information if relevant to the user's question about current events or trends."
	}
	return prompt
}
