// Package file holds the small user-editable files the query path reads:
// prompt templates under prompts/ and the JSON list of curated answers.
package file
