package constant

const (
	// Ollama Configuration
	OllamaDefaultBaseURL = "http://localhost:11434"
	OllamaDefaultModel   = "llama3.2-vision:11b"

	// StorageSlotKeyPrefix namespaces each user's artifact slot in the
	// key-value store.
	StorageSlotKeyPrefix = "artifacts_"

	// DefaultStorageQuotaBytes bounds one artifact slot. Stripped parameters
	// keep saved tests small, so 5 MB holds years of archives.
	DefaultStorageQuotaBytes = 5 * 1024 * 1024

	// Watermill topic for stage lifecycle messages.
	GenerationTopic = "generation.lifecycle"
)

// NotificationTemplates maps event codes to the message pushed over the
// websocket feed. Placeholders in {braces} are filled from the event payload.
var NotificationTemplates = map[string]string{
	"GENERATION_COMPLETED": "The {stage} stage for {subject} has finished.",
	"GENERATION_FAILED":    "The {stage} stage for {subject} failed: {error}",
	"ARTIFACT_SAVED":       "\"{display_name}\" was saved to your archive.",
	"ARTIFACT_SHARED":      "\"{display_name}\" was shared with {recipient}.",
}
