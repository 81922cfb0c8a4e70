package dialogue

import (
	"fmt"
	"math/rand/v2"
)

// Sampling settings per prompt kind
const (
	CoachTemperature   float32 = 0.7
	MeaningTemperature float32 = 0.7
	UsageTemperature   float32 = 0.8

	MeaningMaxTokens int32 = 500
	UsageMaxTokens   int32 = 50
)

var conversationHints = []string{
	"make the response natural and conversational",
	"use different words than previous responses",
	"be creative with your follow-up question",
	"vary your praise words",
	"ask about different topics each time",
}

var roleplayHints = []string{
	"Ask about something you haven't asked before in this conversation",
	"Use different question words than your previous questions",
	"Focus on a completely different aspect of your role",
	"Be creative and probe a new dimension",
	"Explore an unexplored area relevant to your role",
}

var usagePatterns = []string{
	"Use the word in a sentence about daily life",
	"Create a sentence showing what this word means",
	"Make a simple example using this word",
	"Show how children would use this word",
	"Give a clear example with this word",
}

const defaultRole = "You are a friendly English speaking partner."

var roles = map[string]string{
	"teacher": `You are a kind school teacher.
Help the student learn English.
Ask varied study questions about subjects, homework, school projects, learning goals and achievements.
Each question should be about a different academic topic.
Be encouraging and patient.
Stay strictly in teacher role.`,
	"friend": `You are a friendly classmate.
Talk casually and happily.
Ask about hobbies, weekend plans, favourite games, movies or books, sports, pets and family activities.
Each question should be about a different casual topic.
Be cheerful and supportive.
Stay strictly in friend role.`,
	"interviewer": `You are a job interviewer.
Be polite and professional.
Ask about career goals, skills and strengths, experience, problem solving, teamwork and future plans.
Each question should be a different interview topic.
Be encouraging but keep a professional tone.
Stay strictly in interviewer role.`,
	"viva": `You are a viva examiner.
Ask about project objectives, methodology, findings, challenges faced, applications and future scope.
Each question should probe a different aspect of academic work.
Be fair and encouraging while keeping examiner professionalism.
Stay strictly in viva examiner role.`,
}

// RoleInstruction returns the persona text, or a neutral partner for unknown personas
func RoleInstruction(persona string) string {
	if role, ok := roles[persona]; ok {
		return role
	}
	return defaultRole
}

// Prompts builds model prompts. Pick chooses among the phrasing hints and
// defaults to a random choice.
type Prompts struct {
	Pick func(n int) int
}

func (p Prompts) choose(options []string) string {
	pick := p.Pick
	if pick == nil {
		pick = rand.IntN
	}
	return options[pick(len(options))]
}

// Conversation is the free-talk coaching prompt
func (p Prompts) Conversation(history, utterance string) Request {
	prompt := fmt.Sprintf(`You are an English speaking coach for children aged 6 to 15.

STRICT RULES:
- Always correct the child's sentence
- If only one word, make a full sentence
- Very simple English
- Encourage the child with VARIED praise words
- Ask ONE follow-up question about DIFFERENT topics each time
- No grammar explanation
- %s

Respond ONLY in this format:

CORRECT: <correct sentence>
PRAISE: <short encouragement - use different words>
QUESTION: <one simple question about a NEW topic>

Conversation so far:
%s

Child says:
%q
`, p.choose(conversationHints), history, utterance)
	return Request{Prompt: prompt, Temperature: CoachTemperature}
}

// Roleplay is the persona coaching prompt
func (p Prompts) Roleplay(persona, history, utterance string) Request {
	prompt := fmt.Sprintf(`%s

You are doing roleplay with a student aged 6 to 15.

STRICT RULES:
- Always correct the student's sentence
- Very simple English
- Stay STRICTLY in your role
- Ask questions ONLY related to your specific role domain
- Encourage the student with VARIED praise
- Ask ONE role-specific question from your domain
- No grammar explanation
- %s

Respond ONLY in this format:

CORRECT: <correct sentence>
PRAISE: <short encouragement - vary your words>
QUESTION: <one role-specific question about a NEW topic from your domain>

Conversation so far:
%s

Student says:
%q
`, RoleInstruction(persona), p.choose(roleplayHints), history, utterance)
	return Request{Prompt: prompt, Temperature: CoachTemperature}
}

// WordUsage asks for one example sentence using word
func (p Prompts) WordUsage(word string) Request {
	prompt := fmt.Sprintf(`Create ONE simple example sentence using the word %q.

%s

RULES:
1. Sentence must be simple for children aged 6-15
2. Clearly show the word's meaning
3. Use simple vocabulary
4. Make it relatable to children
5. Return ONLY the sentence - no quotes
6. Vary sentence structures and tenses

Now create a NEW, DIFFERENT sentence using %q.`, word, p.choose(usagePatterns), word)
	return Request{Prompt: prompt, Temperature: UsageTemperature, MaxTokens: UsageMaxTokens}
}

// Meaning asks for a labelled explanation of word
func (p Prompts) Meaning(word string) Request {
	prompt := fmt.Sprintf(`You are a helpful English teacher explaining the meaning of %q to students aged 6-15.

You must be able to explain ANY word, from simple ones like "cat" to complex ones like "perspicacious".

FORMAT YOUR RESPONSE EXACTLY AS:
MEANING: <clear definition using simple language>
EXAMPLE: <a relatable sentence using the word>
TYPE: <noun/verb/adjective/adverb/etc>
TIP: <a helpful memory trick or tip>

For simple words keep the explanation short with everyday examples.
For complex words break the meaning into simple parts, use simpler synonyms and give context children understand.
Never say "I don't know" and always use encouraging language.

Word to explain: %q`, word, word)
	return Request{Prompt: prompt, Temperature: MeaningTemperature, MaxTokens: MeaningMaxTokens}
}
