package gateway

import (
	"strings"

	"github.com/spf13/cast"
)

// Normalize reduces the response shapes a JSON-RPC endpoint may return to a
// result value or an upstream error. Priority:
//
//  1. {"error": {...}} or {"error": "..."} with a non-null error
//  2. {"result": ...}
//  3. {"ok": bool, ...}: ok=false is an error, ok=true without result is the payload
//  4. anything else is the value itself
func Normalize(method string, payload any) (any, *UpstreamError) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return payload, nil
	}

	if raw, ok := obj["error"]; ok && raw != nil {
		return nil, upstreamFrom(method, raw)
	}

	if result, ok := obj["result"]; ok {
		return result, nil
	}

	if flag, ok := obj["ok"].(bool); ok {
		if !flag {
			msg := strings.TrimSpace(cast.ToString(obj["message"]))
			if msg == "" {
				msg = "gateway_reported_failure"
			}
			return nil, &UpstreamError{Method: method, Code: "upstream_error", Message: msg}
		}
		return obj, nil
	}

	return obj, nil
}

func upstreamFrom(method string, raw any) *UpstreamError {
	ue := &UpstreamError{Method: method, Code: "upstream_error"}

	switch v := raw.(type) {
	case map[string]any:
		if code := strings.TrimSpace(cast.ToString(v["code"])); code != "" {
			ue.Code = code
		}
		ue.Message = strings.TrimSpace(cast.ToString(v["message"]))
		ue.Data = v["data"]
	case string:
		ue.Message = v
	default:
		ue.Message = cast.ToString(v)
	}

	if ue.Message == "" {
		ue.Message = "unknown_upstream_error"
	}
	return ue
}
