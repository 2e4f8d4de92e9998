// Package driving declares what the CLI, the TCP query service, the chat
// window and the MCP server may ask of the core: answer a question,
// rebuild the knowledge base, and list or resolve pending questions.
package driving
