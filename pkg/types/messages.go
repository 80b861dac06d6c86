package types

// Client -> Server (websocket, JSON)
// join:
//   player_id: string
//   name: string
//
// start: {}            // host only, lobby -> collecting
//
// suggest:
//   word: string       // one candidate word for the current window
//
// vote:
//   choice: number     // 1-4 word index while selecting, 1-2 streamer cheer otherwise
//
// select_word:
//   player_id: string  // must hold the current turn
//   word: string       // must be one of the current options
//
// restart: {}          // host only, completed -> collecting
//
// leave:
//   player_id: string
//
// Raw chat payloads are also accepted on the same socket in any of the
// platform's shapes ({text,user}, {content,username}, {message,user},
// {text,from}, bare string) and run through the chat adapter:
//   "!join <name>" | "!start" | "!restart" | "1".."4" | single word

// Server -> Client
// StateSnapshot:
//   version: number
//   state: full session state (phase, turn_slot, story, candidates,
//          options, scores, streamer_votes, timer, roster, rules)
//
// Error:
//   error: string
