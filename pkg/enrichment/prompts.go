package enrichment

// Prompt for the primary classification pass. The model must answer with bare
// JSON; fenced answers are tolerated and stripped before parsing.
const classificationPrompt = `You're an assistant that classifies messages.
Return a JSON object with keys:
- category: one of STUDY (any study notes), IDEA, RANT, TASK (to-do stuff), LOG (like a journal), MEDIA (anything media-related even rants), QUOTE, OTHER
- mood: NEUTRAL, HAPPY, SAD, ANGRY, TIRED, ANXIOUS, EXCITED, BORED, REFLECTIVE
- summary: one-sentence summary of the message.
If unsure, default to:
category: OTHER
mood: NEUTRAL
summary: ""`

// Prompt for the secondary pass on MEDIA messages.
const boldnessPrompt = `Classify how bold this media opinion is.
Return JSON with keys:
- boldness: "Cold Take", "Mild Take", "Hot Take", or "Nuclear Take"
- explanation: one short sentence
- confidence: integer 0-100 (how sure you are)`
