package http

import (
	"encoding/json"
	"fmt"

	"github.com/SchoolHTMLDeveloper/chatfix/internal/core"
	"github.com/SchoolHTMLDeveloper/chatfix/internal/proto"
)

// inboundToCommand maps a wire envelope to a core command. A non-nil
// proto.Error means the envelope was understood but invalid and the caller
// should report it without dropping the connection.
func inboundToCommand(in proto.Inbound) (*core.Command, *proto.Error, error) {
	switch in.Type {
	case proto.InboundTypeHello:
		var data proto.HelloData
		if err := json.Unmarshal(in.Data, &data); err != nil {
			return nil, nil, fmt.Errorf("decode hello: %w", err)
		}
		return &core.Command{
			Kind:       core.CommandHello,
			Name:       data.Name,
			Credential: data.Credential,
		}, nil, nil

	case proto.InboundTypeChat:
		var data proto.ChatData
		if err := json.Unmarshal(in.Data, &data); err != nil {
			return nil, nil, fmt.Errorf("decode chat: %w", err)
		}
		return &core.Command{
			Kind: core.CommandChat,
			Text: data.Text,
		}, nil, nil

	default:
		return nil, &proto.Error{Code: "bad_request", Msg: "unknown message type: " + in.Type}, nil
	}
}

// outboundFromEvent maps a core event to its wire envelope.
func outboundFromEvent(ev *core.Event) proto.Outbound {
	switch ev.Kind {
	case core.EventAssign:
		return proto.Outbound{
			Type: proto.OutboundTypeAssign,
			Data: proto.AssignData{Credential: ev.Credential},
		}
	case core.EventHistory:
		msgs := make([]proto.MessageData, 0, len(ev.Messages))
		for _, m := range ev.Messages {
			msgs = append(msgs, messageData(m))
		}
		return proto.Outbound{
			Type: proto.OutboundTypeHistory,
			Data: proto.HistoryData{Messages: msgs},
		}
	case core.EventMessage:
		return proto.Outbound{
			Type: proto.OutboundTypeMessage,
			Data: messageData(ev.Message),
		}
	case core.EventBanned:
		return proto.Outbound{
			Type: proto.OutboundTypeBanned,
			Data: proto.BannedData{Reason: ev.Reason},
		}
	case core.EventReload:
		return proto.Outbound{Type: proto.OutboundTypeReload}
	case core.EventStatus:
		return proto.Outbound{
			Type: proto.OutboundTypeStatus,
			Data: proto.StatusData{Status: ev.Status},
		}
	case core.EventError:
		out := proto.Outbound{Type: proto.OutboundTypeError}
		if ev.Error != nil {
			out.Error = &proto.Error{Code: ev.Error.Code, Msg: ev.Error.Message}
		}
		return out
	default:
		return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{
			Code: "internal",
			Msg:  "unmapped event",
		}}
	}
}

func messageData(m core.Message) proto.MessageData {
	return proto.MessageData{
		Name:     m.Name,
		Identity: m.Identity,
		Text:     m.Text,
		System:   m.System,
		TS:       m.SentAt.Unix(),
	}
}
