package http

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBearerToken(t *testing.T) {
	Convey("BearerToken", t, func() {
		So(BearerToken("Bearer abc123"), ShouldEqual, "abc123")
		So(BearerToken("bearer   abc123 "), ShouldEqual, "abc123")
		So(BearerToken("Basic dXNlcg=="), ShouldBeEmpty)
		So(BearerToken("Bearer"), ShouldBeEmpty)
		So(BearerToken(""), ShouldBeEmpty)
	})
}

func TestNewErrorResponse(t *testing.T) {
	Convey("NewErrorResponse keeps detail only when present", t, func() {
		So(NewErrorResponse(CodeNotFound, "not found").Detail, ShouldBeEmpty)
		So(NewErrorResponse(CodeNotFound, "not found", "course 9").Detail, ShouldEqual, "course 9")
	})
}
