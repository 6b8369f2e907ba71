package openapi

import (
	"strconv"

	"github.com/yanun0323/decimal"

	"main/internal/adapter/enum"
)

// Every frame carries its service name in "trnm".
const (
	trnmLogin           = "LOGIN"
	trnmConditionList   = "CNSRLST"
	trnmConditionSearch = "CNSRREQ"
	trnmReal            = "REAL"
	trnmOrder           = "ORDER"
	trnmTR              = "TR"
)

// TR tags the coordinator issues. Anything else on a TR frame is passed
// through unresolved and dropped by the router.
const (
	tagPrice   = "opt10001"
	tagBalance = "opw00018"
)

const searchTypeRealtime = "1"

const (
	realTypeCondition = "condition"
	realTypeFill      = "fill"
)

type frameHeader struct {
	Trnm string `json:"trnm"`
}

type loginRequest struct {
	Trnm  string `json:"trnm"`
	Token string `json:"token"`
}

type ackResponse struct {
	Trnm       string `json:"trnm"`
	ReturnCode int    `json:"return_code"`
	ReturnMsg  string `json:"return_msg"`
}

type conditionListRequest struct {
	Trnm string `json:"trnm"`
}

type conditionListResponse struct {
	Trnm string      `json:"trnm"`
	Data [][2]string `json:"data"` // [0]index [1]name
}

type conditionSearchRequest struct {
	Trnm       string `json:"trnm"`
	Seq        string `json:"seq"`
	SearchType string `json:"search_type"`
}

type conditionSearchResponse struct {
	Trnm       string               `json:"trnm"`
	Seq        string               `json:"seq"`
	ReturnCode int                  `json:"return_code"`
	Data       []conditionSearchRow `json:"data"`
}

type conditionSearchRow struct {
	Code string `json:"code"`
}

type realEvent struct {
	Trnm string        `json:"trnm"`
	Type string        `json:"type"`
	Code string        `json:"code"`
	Cond realCondition `json:"cond"`
	Fill realFill      `json:"fill"`
}

type realCondition struct {
	Seq    string `json:"seq"`
	Action string `json:"action"` // I insert, D delete
}

type realFill struct {
	Kind     string          `json:"kind"` // execution, confirmation
	Quantity decimal.Decimal `json:"qty"`  // resulting held quantity
}

type trRequest struct {
	Trnm    string `json:"trnm"`
	Tag     string `json:"tag"`
	Code    string `json:"code,omitempty"`
	Account string `json:"account,omitempty"`
}

type trResponse struct {
	Trnm       string         `json:"trnm"`
	Tag        string         `json:"tag"`
	ReturnCode int            `json:"return_code"`
	Price      trPriceRow     `json:"price"`
	Balance    []trBalanceRow `json:"balance"`
}

type trPriceRow struct {
	Code         string          `json:"code"`
	CurrentPrice decimal.Decimal `json:"cur_prc"`
}

type trBalanceRow struct {
	Code     string          `json:"code"`
	Quantity decimal.Decimal `json:"qty"`
}

type orderRequest struct {
	Trnm      string `json:"trnm"`
	RequestID int64  `json:"req_id"`
	Account   string `json:"account"`
	Code      string `json:"code"`
	Side      string `json:"side"`
	OrdType   string `json:"ord_type"`
	Quantity  int64  `json:"qty"`
	Price     int64  `json:"prc,omitempty"`
}

type orderResponse struct {
	Trnm       string `json:"trnm"`
	RequestID  int64  `json:"req_id"`
	ReturnCode int    `json:"return_code"`
	ReturnMsg  string `json:"return_msg"`
}

func channelOfTag(tag string) enum.TRChannel {
	switch tag {
	case tagPrice:
		return enum.TRChannelPrice
	case tagBalance:
		return enum.TRChannelBalance
	default:
		return 0
	}
}

func orderTypeLabel(t enum.OrderType) string {
	if t == enum.OrderTypeLimit {
		return "limit"
	}
	return "market"
}

// Wire prices and quantities arrive as integral decimal strings in the
// account currency's smallest unit.
func toInt64(d decimal.Decimal) (int64, error) {
	return strconv.ParseInt(d.String(), 10, 64)
}
