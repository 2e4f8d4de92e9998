// Package services holds the core use cases.
//
// RetrievalService decides what a question gets: a fixed reply from the
// greeting and domain gates, or re-ranked context from the vector index.
// Generator turns that context into text through the LLM port.
// AnswerService joins the two. QuestionService sits in front for end
// users, serving shortcuts and recording questions nobody could answer.
// IngestService builds the index offline.
//
// A missing index or generator degrades to fixed answers rather than
// failing. Every side effect goes through a driven port.
package services
