package handler_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/a-h/templ"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/modelhub-web/internal/handler"
	"github.com/angeloszaimis/modelhub-web/pkg/logger"
)

var _ = Describe("PageHandler", func() {
	var page *handler.PageHandler

	BeforeEach(func() {
		page = handler.NewPageHandler(logger.Discard(), "Model Hub", nil, nil)
	})

	It("renders the header", func() {
		rec := httptest.NewRecorder()
		page.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Content-Type")).To(Equal("text/html; charset=utf-8"))
		Expect(rec.Body.String()).To(ContainSubstring(`<div class="flex flex-col gap-16 items-center">`))
		Expect(rec.Body.String()).To(ContainSubstring("<title>Model Hub</title>"))
	})

	It("sends no body for HEAD", func() {
		rec := httptest.NewRecorder()
		page.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.Len()).To(BeZero())
	})

	It("refuses other methods", func() {
		rec := httptest.NewRecorder()
		page.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

		Expect(rec.Code).To(Equal(http.StatusMethodNotAllowed))
		Expect(rec.Header().Get("Allow")).To(Equal("GET, HEAD"))
	})

	It("answers 500 when rendering fails", func() {
		failing := templ.ComponentFunc(func(context.Context, io.Writer) error {
			return errors.New("boom")
		})
		page = handler.NewPageHandler(logger.Discard(), "Model Hub", failing, nil)

		rec := httptest.NewRecorder()
		page.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Body.String()).NotTo(ContainSubstring("<html"))
	})
})

var _ = Describe("Root", func() {
	tag := func(name string) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(name))
		})
	}

	DescribeTable("dispatch",
		func(path, expected string) {
			rec := httptest.NewRecorder()
			handler.Root(tag("page"), tag("rewrites")).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			Expect(rec.Body.String()).To(Equal(expected))
		},
		Entry("page", "/", "page"),
		Entry("api", "/api/models", "rewrites"),
		Entry("unknown", "/nope", "rewrites"),
	)
})
