package chatbot

import (
	"fmt"
	"strings"
	"time"
)

type intentExample struct {
	input  string
	intent string
}

// Few-shot examples for intent classification.
var intentExamples = []intentExample{
	{"Hey, I have a headache", "symptom"},
	{"What about May 5th", "appointment"},
	{"I want to see a doctor this week", "appointment"},
	{"Tomorrow works?", "appointment"},
	{"I don't feel good", "symptom"},
	{"hey, how are you?", "none"},
	{"how does this thing work?", "none"},
	{"I love you!", "none"},
	{"this is nonsense", "none"},
	{"a random stuff", "none"},
}

func intentSystemPrompt() string {
	var b strings.Builder
	b.WriteString("You are an intent classification bot.\n\n")
	for _, ex := range intentExamples {
		fmt.Fprintf(&b, "input: %s\nintent: %s\n\n", ex.input, ex.intent)
	}
	b.WriteString("You should output only an intent name without accompanying texts.")
	return b.String()
}

func intentUserPrompt(message string) string {
	return fmt.Sprintf("input: %s\nintent: ", message)
}

func extractionPrompt(history string, now time.Time) string {
	return fmt.Sprintf(`You are a care coordinator bot's appointments tool.
You should take Current conversation and Human input
and return a JSON string WITHOUT ANY ACCOMPANYING TEXTS.
JSON fields:
name: appointment title. Come up with it based on the conversation history
date: appointment date. Leave empty if not provided. Don't make it up!
time: appointment time. Leave empty if not provided. Don't make it up!
description: put here user's complaints (health condition messages).

Under "Current conversation:" below there might be name, date or time.
Reuse them ONLY if relevant info is there: name, date, time, or description.
Output format (see, no accompanying text, just JSON):
{
    "name": "Appointment title derived from the current conversation",
    "date": "YYYY-MM-DD",
    "time": "HH:MM",
    "description": "put here user's complaints (health condition messages)"
}
Remember to return a JSON with data derived from conversation!
Don't make up answers!

Current date and time is: %s

Current conversation:
%s`, now.Format("2006-01-02 15:04"), history)
}

func condensePrompt(history, question string) string {
	return fmt.Sprintf(`Given the following conversation and a follow up question, rephrase the follow up question to be a standalone question.

Chat History:
%s
Follow Up Input: %s
Standalone question:`, history, question)
}

func symptomsQAPrompt(context, question, healthContext string) string {
	return fmt.Sprintf(`Use the following pieces of context to answer the symptoms question at the end.
If you don't know the answer, just say that you don't know, don't try to make up an answer.
After answering the question, ask if they want to schedule an appointment with a doctor.

%s

%s

Question: %s
Helpful Answer:`, context, healthContext, question)
}

const generalChatPersona = `You are a care coordinator bot that makes sure that users are healthy
and offers to schedule an appointment with a doctor.`
