package docqa

import "encoding/json"

// Raw JSON schemas for the MCP tool inputs.

func GetAskSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "question": {
      "type": "string",
      "description": "The user question to answer from the document collection"
    },
    "session_id": {
      "type": "string",
      "description": "Optional chat session id; prior turns are folded into the search"
    },
    "include_references": {
      "type": "boolean",
      "description": "Append a source reference section to the answer (default true)"
    }
  },
  "required": ["question"]
}`)
}

func GetSearchSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "query": {
      "type": "string",
      "description": "Natural language search query"
    },
    "document_name": {
      "type": "string",
      "description": "Optional document name used to bias and filter the search"
    }
  },
  "required": ["query"]
}`)
}

func GetTraceSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "run_id": {
      "type": "string",
      "description": "Run id returned by the ask tool; omit to list recent runs"
    },
    "limit": {
      "type": "number",
      "description": "How many recent runs to list when run_id is omitted (default 10)"
    }
  }
}`)
}

func GetCreateSessionSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {}
}`)
}

func GetListSessionsSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "offset": {
      "type": "number",
      "description": "List offset (default 0)"
    },
    "limit": {
      "type": "number",
      "description": "Maximum sessions to return (default 20)"
    }
  }
}`)
}

func GetDeleteSessionSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "session_id": {
      "type": "string",
      "description": "Session to delete"
    }
  },
  "required": ["session_id"]
}`)
}
