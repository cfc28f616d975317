package refine

import "fmt"

const taskPrompt = `You are an expert multilingual transcription and content refinement assistant.
The user has provided an audio recording.

TASK:
1. Transcribe the audio accurately. The audio might be in Urdu, English, Roman Urdu, Hindi, or a mix.
2. Detect the primary language used.
3. Refine the transcribed text according to this style: %q.
4. %s

OUTPUT FORMAT:
Return ONLY a JSON object with the following structure:
{
  "originalText": "The raw transcription of the audio",
  "refinedText": "The polished and refined version of the text",
  "detectedLanguage": "The name of the detected language"
}`

// buildPrompt renders the full instruction for one request. Only the style
// token and its fixed instruction are interpolated.
func buildPrompt(style Style, instruction string) string {
	return fmt.Sprintf(taskPrompt, string(style), instruction)
}
