package constant

// In-process bus topics.
const MessageCreatedTopic = "message.created"
