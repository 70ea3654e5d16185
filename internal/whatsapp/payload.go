package whatsapp

import (
	"encoding/json"
	"errors"
)

// Envelope is the Cloud API webhook delivery. Only the fields the bot reads
// are modelled.
type Envelope struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string `json:"field"`
	Value *Value `json:"value"`
}

type Value struct {
	MessagingProduct string    `json:"messaging_product"`
	Metadata         Metadata  `json:"metadata"`
	Contacts         []Contact `json:"contacts"`
	Messages         []Message `json:"messages"`
}

type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type Contact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

type Message struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      *Text  `json:"text"`
}

type Text struct {
	Body string `json:"body"`
}

// Decode parses a delivery. Malformed JSON is an error; well-formed JSON of
// an unexpected shape is not: the mismatched parts are simply left empty.
func Decode(raw []byte) (*Envelope, error) {
	var env Envelope
	err := json.Unmarshal(raw, &env)
	var typeErr *json.UnmarshalTypeError
	if err != nil && !errors.As(err, &typeErr) {
		return nil, err
	}
	return &env, nil
}

// FirstValue returns entry[0].changes[0].value, or nil if any level is missing.
func (e *Envelope) FirstValue() *Value {
	if e == nil || len(e.Entry) == 0 || len(e.Entry[0].Changes) == 0 {
		return nil
	}
	return e.Entry[0].Changes[0].Value
}

// FirstMessage returns value.messages[0], or nil.
func (v *Value) FirstMessage() *Message {
	if v == nil || len(v.Messages) == 0 {
		return nil
	}
	return &v.Messages[0]
}
