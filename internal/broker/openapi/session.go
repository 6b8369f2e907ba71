package openapi

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
	"github.com/yanun0323/pkg/ws"

	"main/internal/adapter"
	"main/internal/adapter/enum"
	"main/pkg/exception"
)

// Session drives the brokerage OpenAPI websocket and translates its frames
// into coordinator events. One session serves one account.
type Session struct {
	wss    *ws.WebSocket
	appKey string
	reqID  atomic.Int64

	publish func(adapter.Event)
}

func New(ctx context.Context, url, appKey string) *Session {
	return &Session{
		wss:    ws.New(ctx, url),
		appKey: appKey,
	}
}

func (s *Session) Close() {
	s.wss.Close()
}

// Start connects, authenticates, begins frame translation and requests the
// condition list. Translated events reach the coordinator through publish.
func (s *Session) Start(ctx context.Context, publish func(adapter.Event)) error {
	if publish == nil {
		return exception.ErrBrokerNotConnected
	}
	s.publish = publish

	if err := s.wss.Start(ctx); err != nil {
		return errors.Wrap(err, "start wss")
	}
	if err := s.login(ctx); err != nil {
		return errors.Wrap(err, "login")
	}

	s.observe(ctx)

	if err := s.wss.WriteJSON(conditionListRequest{Trnm: trnmConditionList}); err != nil {
		return errors.Wrap(err, "request condition list")
	}
	return nil
}

func (s *Session) login(ctx context.Context) error {
	appendIntoRegister := true
	if err := s.wss.SendAndWait(ctx, ws.Sidecar{
		Sender: func(ctx context.Context, ws *ws.WebSocket) error {
			payload := loginRequest{Trnm: trnmLogin, Token: s.appKey}
			if err := ws.WriteJSON(payload); err != nil {
				return errors.Wrap(err, "write login payload")
			}

			return nil
		},
		Waiter: func(ctx context.Context, m ws.Message) (bool, error) {
			resp, ok := ws.ReadMessage[ackResponse](m)
			if !ok || resp.Trnm != trnmLogin {
				return false, nil
			}

			if resp.ReturnCode != 0 {
				return false, errors.Errorf("login rejected, code: %d, msg: %s", resp.ReturnCode, resp.ReturnMsg)
			}
			return true, nil
		},
	}, appendIntoRegister); err != nil {
		return errors.Wrap(err, "send and wait")
	}

	return nil
}

// SubmitOrder sends one order frame and waits for the matching transport ack.
// A nil return means accepted for execution, not executed.
func (s *Session) SubmitOrder(ctx context.Context, req adapter.OrderRequest) error {
	if !req.Side.IsAvailable() || !req.Type.IsAvailable() || req.Quantity <= 0 {
		return exception.ErrOrderInvalidRequest
	}

	id := s.reqID.Add(1)
	payload := orderRequest{
		Trnm:      trnmOrder,
		RequestID: id,
		Account:   req.Account,
		Code:      string(req.Code),
		Side:      req.Side.String(),
		OrdType:   orderTypeLabel(req.Type),
		Quantity:  int64(req.Quantity),
		Price:     int64(req.Price),
	}

	appendIntoRegister := false
	if err := s.wss.SendAndWait(ctx, ws.Sidecar{
		Sender: func(ctx context.Context, ws *ws.WebSocket) error {
			if err := ws.WriteJSON(payload); err != nil {
				return errors.Wrap(err, "write order payload").With("payload", payload)
			}

			return nil
		},
		Waiter: func(ctx context.Context, m ws.Message) (bool, error) {
			resp, ok := ws.ReadMessage[orderResponse](m)
			if !ok || resp.Trnm != trnmOrder || resp.RequestID != id {
				return false, nil
			}

			if resp.ReturnCode != 0 {
				return false, errors.Wrapf(exception.ErrOrderRejected, "code: %d, msg: %s", resp.ReturnCode, resp.ReturnMsg)
			}
			return true, nil
		},
	}, appendIntoRegister); err != nil {
		return errors.Wrap(err, "send and wait")
	}

	return nil
}

// RequestPrice issues the price-lookup TR. The response frame is translated
// by the observe loop.
func (s *Session) RequestPrice(ctx context.Context, code adapter.Code) error {
	if err := s.wss.WriteJSON(trRequest{Trnm: trnmTR, Tag: tagPrice, Code: string(code)}); err != nil {
		return errors.Wrap(err, "write price request").With("code", code)
	}
	return nil
}

// RequestBalance issues the balance-snapshot TR for the account.
func (s *Session) RequestBalance(ctx context.Context, account string) error {
	if err := s.wss.WriteJSON(trRequest{Trnm: trnmTR, Tag: tagBalance, Account: account}); err != nil {
		return errors.Wrap(err, "write balance request")
	}
	return nil
}

// SubscribeCondition registers one condition for real-time transitions. The
// brokerage answers with the initial scan list, which the observe loop
// publishes separately.
func (s *Session) SubscribeCondition(ctx context.Context, index int, name string) error {
	seq := strconv.Itoa(index)
	appendIntoRegister := true
	if err := s.wss.SendAndWait(ctx, ws.Sidecar{
		Sender: func(ctx context.Context, ws *ws.WebSocket) error {
			payload := conditionSearchRequest{
				Trnm:       trnmConditionSearch,
				Seq:        seq,
				SearchType: searchTypeRealtime,
			}
			if err := ws.WriteJSON(payload); err != nil {
				return errors.Wrap(err, "write condition search payload").With("payload", payload)
			}

			return nil
		},
		Waiter: func(ctx context.Context, m ws.Message) (bool, error) {
			resp, ok := ws.ReadMessage[conditionSearchResponse](m)
			if !ok || resp.Trnm != trnmConditionSearch || resp.Seq != seq {
				return false, nil
			}

			if resp.ReturnCode != 0 {
				return false, errors.Wrapf(exception.ErrBrokerSubscribeFailed, "condition %q, code: %d", name, resp.ReturnCode)
			}
			return true, nil
		},
	}, appendIntoRegister); err != nil {
		return errors.Wrap(err, "send and wait")
	}

	return nil
}

func (s *Session) observe(ctx context.Context) {
	ch, cancel := s.wss.Subscribe()

	go func() {
		defer cancel()
		for {
			select {
			case <-sys.Shutdown():
				return
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}

				s.routeFrame(m)
			}
		}
	}()
}

func (s *Session) routeFrame(m ws.Message) {
	header, ok := ws.ReadMessage[frameHeader](m)
	if !ok {
		return
	}

	switch header.Trnm {
	case trnmConditionList:
		s.onConditionList(m)
	case trnmConditionSearch:
		s.onConditionSearch(m)
	case trnmReal:
		s.onReal(m)
	case trnmTR:
		s.onTR(m)
	}
}

func (s *Session) onConditionList(m ws.Message) {
	resp, ok := ws.ReadMessage[conditionListResponse](m)
	if !ok {
		return
	}

	conditions := make([]adapter.Condition, 0, len(resp.Data))
	for _, row := range resp.Data {
		index, err := strconv.Atoi(row[0])
		if err != nil {
			logs.Errorf("condition list row seq %q, err: %+v", row[0], err)
			continue
		}
		conditions = append(conditions, adapter.Condition{Index: index, Name: row[1]})
	}
	s.publish(adapter.ConditionListEvent{Conditions: conditions})
}

func (s *Session) onConditionSearch(m ws.Message) {
	resp, ok := ws.ReadMessage[conditionSearchResponse](m)
	if !ok || resp.ReturnCode != 0 {
		return
	}

	index, err := strconv.Atoi(resp.Seq)
	if err != nil {
		logs.Errorf("condition search seq %q, err: %+v", resp.Seq, err)
		return
	}

	codes := make([]adapter.Code, 0, len(resp.Data))
	for _, row := range resp.Data {
		codes = append(codes, adapter.Code(row.Code))
	}
	s.publish(adapter.ScanListEvent{ConditionIndex: index, Codes: codes})
}

func (s *Session) onReal(m ws.Message) {
	ev, ok := ws.ReadMessage[realEvent](m)
	if !ok {
		return
	}

	switch ev.Type {
	case realTypeCondition:
		var direction enum.TransitionDirection
		switch ev.Cond.Action {
		case "I":
			direction = enum.TransitionEntered
		case "D":
			direction = enum.TransitionLeft
		default:
			return
		}

		index, err := strconv.Atoi(ev.Cond.Seq)
		s.publish(adapter.TransitionEvent{
			Code:           adapter.Code(ev.Code),
			Direction:      direction,
			ConditionIndex: index,
			HasIndex:       err == nil,
		})
	case realTypeFill:
		var kind enum.FillKind
		switch ev.Fill.Kind {
		case "execution":
			kind = enum.FillKindExecution
		case "confirmation":
			kind = enum.FillKindConfirmation
		default:
			return
		}

		quantity, err := toInt64(ev.Fill.Quantity)
		if err != nil {
			logs.Errorf("fill quantity %v for %s, err: %+v", ev.Fill.Quantity, ev.Code, err)
			return
		}
		s.publish(adapter.FillEvent{
			FillKind: kind,
			Code:     adapter.Code(ev.Code),
			Quantity: adapter.Quantity(quantity),
		})
	}
}

func (s *Session) onTR(m ws.Message) {
	resp, ok := ws.ReadMessage[trResponse](m)
	if !ok {
		return
	}

	event := adapter.TRResponseEvent{
		Tag:     resp.Tag,
		Channel: channelOfTag(resp.Tag),
		Failed:  resp.ReturnCode != 0,
	}

	switch event.Channel {
	case enum.TRChannelPrice:
		price, err := toInt64(resp.Price.CurrentPrice)
		if err != nil {
			event.Failed = true
		} else {
			event.Price = adapter.PriceQuote{
				Code:  adapter.Code(resp.Price.Code),
				Price: adapter.Price(price),
			}
		}
	case enum.TRChannelBalance:
		for _, row := range resp.Balance {
			quantity, err := toInt64(row.Quantity)
			if err != nil {
				logs.Errorf("balance quantity %v for %s, err: %+v", row.Quantity, row.Code, err)
				continue
			}
			event.Balance = append(event.Balance, adapter.BalanceEntry{
				Code:     adapter.Code(row.Code),
				Quantity: adapter.Quantity(quantity),
			})
		}
	}

	s.publish(event)
}
