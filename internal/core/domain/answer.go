package domain

// Fixed replies of the answer policy. The web layer compares responses
// against AnswerUnknown, so it must stay byte-identical.
const (
	// AnswerGreeting is returned for greeting-only queries.
	AnswerGreeting = "Hi! I'm the NCDB chatbot. I'm doing well, how can I help you today?"

	// AnswerOutOfDomain is returned when the query mentions nothing in scope.
	AnswerOutOfDomain = "Hi! I specialize in Cadillac V16 (1930-1940) questions. " +
		"Feel free to ask about history, styles, or engines."

	// AnswerIndexUnavailable is returned while the knowledge base is not loaded.
	AnswerIndexUnavailable = "Error: Knowledge base not loaded."

	// AnswerInsufficient is returned when retrieval finds nothing.
	AnswerInsufficient = "I am sorry, I do not have enough information."

	// AnswerNoDetails replaces a generation that echoes the question.
	AnswerNoDetails = "I am sorry, I could not find specific details about that in the database."

	// AnswerUnknown replaces an empty or too-short generation.
	AnswerUnknown = "I do not know."

	// AnswerDefault is shown to end users when the service cannot answer.
	AnswerDefault = "I am sorry, I do not understand. " +
		"Please contact mrcadillac@newcadillacdatabase.org for further assistance."
)

// Decision is the outcome of the retrieval policy for one query.
// Either Reply is final, or Context must be handed to the generator.
type Decision struct {
	// Query is the trimmed query text.
	Query string

	// Reply is set when the policy short-circuits.
	Reply string

	// Final reports whether Reply is the answer.
	Final bool

	// Context is the assembled context block for generation.
	Context string

	// Hits are the selected hits, in context order.
	Hits []RetrievalHit
}
