package constant

// Message roles as persisted in the messages table.
const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// File roles accepted by the upload endpoint.
const (
	FileTypePlan    = "plan"
	FileTypeMetrics = "metrics"
)

// Upload tracker states.
const (
	UploadStatusUploading = "uploading"
	UploadStatusCompleted = "completed"
	UploadStatusError     = "error"
)

// DefaultThreadTitle is the placeholder set at creation; the titler service
// replaces it after the first real exchange.
const DefaultThreadTitle = "New Conversation"

// PlaceholderUserContent stands in for the user message when a turn carries
// files but no text.
const PlaceholderUserContent = "[Uploaded Files]"

// Fixed replies of the continuity engine.
const (
	ReplyEmptyTurn = "Please enter a message or upload files to start a conversation."

	ReplyOffTopicFirstContact = "Your message doesn't appear related to cloud cost optimization. Please provide billing, usage metrics, or a FinOps-related question."

	ReplyUnrelatedContinuation = "This message doesn't seem related to the prior cloud analysis context."
)

// Classifier prompts for the relevance gate. The gate treats any answer
// starting with "Y" (case-insensitive) as relevant.
const (
	RelevanceSystemPrompt   = "You answer strictly with YES or NO."
	RelevanceQuestionPrefix = "Is this about cloud cost optimization and/or cloud infrastructure? "
)

// Analysis prompts.
const (
	AnalysisSystemPrompt = "You are a Cloud FinOps Copilot. Analyze the provided billing plan and usage metrics and suggest concrete cost optimizations."

	ContinueExistingDirective = "Continue analyzing cloud spend trends based on the previous context."
	ContinueFreshDirective    = "Continue analyzing cloud spend trends as a new analysis session."
)

// Summarizer prompts.
const (
	SummarySystemPrompt   = "You summarize FinOps chats into crisp bullet points."
	SummaryQuestionPrefix = "Summarize key spend drivers and actions:\n"
)

// TitlerSystemPrompt drives async thread title generation.
const TitlerSystemPrompt = "You name chat conversations. Reply with a title of at most six words, no quotes, nothing else."

// ContextWindowSize is the number of most recent messages folded into the
// continuation prompt (fetched newest-first, then reversed).
const ContextWindowSize = 5
