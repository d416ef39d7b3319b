package gateway

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// Kind — тип кадра шлюза.
type Kind uint32

const (
	KindUnknown Kind = iota
	KindMessage      // входящее сообщение канала (событие)
	KindSend         // отправить сообщение
	KindHistory      // запросить историю канала
	KindDelete       // удалить сообщение
	KindResult       // успешный ответ на запрос с тем же seq
	KindError        // ошибка запроса с тем же seq
)

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindSend:
		return "send"
	case KindHistory:
		return "history"
	case KindDelete:
		return "delete"
	case KindResult:
		return "result"
	case KindError:
		return "error"
	default:
		return fmt.Sprintf("kind(%d)", uint32(k))
	}
}

// Message — сообщение канала.
type Message struct {
	ID      string
	Channel string
	Author  string
	Bot     bool // автор — бот (наш или чужой)
	Content string
	Time    time.Time
}

// Frame — единица обмена со шлюзом. Кодируется в protobuf wire format:
//
//	1 seq       varint
//	2 kind      varint
//	3 channel   string
//	4 msg_id    string
//	5 content   string
//	6 after     varint (unix ms)
//	7 limit     varint
//	8 messages  repeated Message
//	9 error     string
type Frame struct {
	Seq       uint32
	Kind      Kind
	Channel   string
	MessageID string
	Content   string
	After     time.Time
	Limit     uint32
	Messages  []Message
	Error     string
}

const (
	fSeq protowire.Number = iota + 1
	fKind
	fChannel
	fMessageID
	fContent
	fAfter
	fLimit
	fMessages
	fError
)

const (
	mID protowire.Number = iota + 1
	mChannel
	mAuthor
	mBot
	mContent
	mTime
)

var errMalformed = errors.New("gateway: malformed frame")

func (f *Frame) Marshal() []byte {
	var b []byte
	b = appendVarint(b, fSeq, uint64(f.Seq))
	b = appendVarint(b, fKind, uint64(f.Kind))
	b = appendString(b, fChannel, f.Channel)
	b = appendString(b, fMessageID, f.MessageID)
	b = appendString(b, fContent, f.Content)
	b = appendVarint(b, fAfter, unixMilli(f.After))
	b = appendVarint(b, fLimit, uint64(f.Limit))
	for i := range f.Messages {
		b = protowire.AppendTag(b, fMessages, protowire.BytesType)
		b = protowire.AppendBytes(b, f.Messages[i].marshal())
	}
	b = appendString(b, fError, f.Error)
	return b
}

// Unmarshal разбирает кадр. Неизвестные поля пропускаются.
func (f *Frame) Unmarshal(b []byte) error {
	*f = Frame{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", errMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case typ == protowire.VarintType && num <= fLimit:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("%w: %v", errMalformed, protowire.ParseError(n))
			}
			b = b[n:]
			switch num {
			case fSeq:
				f.Seq = uint32(v)
			case fKind:
				f.Kind = Kind(v)
			case fAfter:
				f.After = fromUnixMilli(v)
			case fLimit:
				f.Limit = uint32(v)
			}
		case typ == protowire.BytesType && (num == fChannel || num == fMessageID || num == fContent || num == fMessages || num == fError):
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return fmt.Errorf("%w: %v", errMalformed, protowire.ParseError(n))
			}
			b = b[n:]
			switch num {
			case fChannel:
				f.Channel = string(v)
			case fMessageID:
				f.MessageID = string(v)
			case fContent:
				f.Content = string(v)
			case fError:
				f.Error = string(v)
			case fMessages:
				var m Message
				if err := m.unmarshal(v); err != nil {
					return err
				}
				f.Messages = append(f.Messages, m)
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("%w: %v", errMalformed, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return nil
}

func (m *Message) marshal() []byte {
	var b []byte
	b = appendString(b, mID, m.ID)
	b = appendString(b, mChannel, m.Channel)
	b = appendString(b, mAuthor, m.Author)
	if m.Bot {
		b = appendVarint(b, mBot, protowire.EncodeBool(true))
	}
	b = appendString(b, mContent, m.Content)
	b = appendVarint(b, mTime, unixMilli(m.Time))
	return b
}

func (m *Message) unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", errMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case typ == protowire.VarintType && (num == mBot || num == mTime):
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("%w: %v", errMalformed, protowire.ParseError(n))
			}
			b = b[n:]
			if num == mBot {
				m.Bot = protowire.DecodeBool(v)
			} else {
				m.Time = fromUnixMilli(v)
			}
		case typ == protowire.BytesType && num >= mID && num <= mContent && num != mBot:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return fmt.Errorf("%w: %v", errMalformed, protowire.ParseError(n))
			}
			b = b[n:]
			switch num {
			case mID:
				m.ID = v
			case mChannel:
				m.Channel = v
			case mAuthor:
				m.Author = v
			case mContent:
				m.Content = v
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("%w: %v", errMalformed, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return nil
}

// нулевые значения не пишем, как в proto3
func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func unixMilli(t time.Time) uint64 {
	if t.IsZero() || t.UnixMilli() < 0 {
		return 0
	}
	return uint64(t.UnixMilli())
}

func fromUnixMilli(v uint64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.UnixMilli(int64(v))
}
