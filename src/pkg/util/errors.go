package util

import "github.com/tuumbleweed/xerr"

/*
ErrorMessage renders e as "msg: cause" for log lines and API responses.
Source location and context stay out of it.
*/
func ErrorMessage(e *xerr.Error) string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Msg
	}
	if e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg + ": " + e.Err.Error()
}
