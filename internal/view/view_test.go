package view_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/a-h/templ"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/angeloszaimis/modelhub-web/internal/view"
)

func render(c templ.Component) string {
	var buf bytes.Buffer
	Expect(c.Render(context.Background(), &buf)).To(Succeed())
	return buf.String()
}

func elementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

func class(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Key == "class" {
			return a.Val
		}
	}
	return ""
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("closed")
}

var _ = Describe("Header", func() {
	It("renders an outer column with two empty children", func() {
		nodes, err := html.ParseFragment(strings.NewReader(render(view.Header())), &html.Node{
			Type:     html.ElementNode,
			Data:     "body",
			DataAtom: atom.Body,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(nodes).To(HaveLen(1))

		outer := nodes[0]
		Expect(outer.Data).To(Equal("div"))
		Expect(class(outer)).To(Equal("flex flex-col gap-16 items-center"))

		children := elementChildren(outer)
		Expect(children).To(HaveLen(2))

		Expect(children[0].Data).To(Equal("div"))
		Expect(class(children[0])).To(Equal("flex gap-8 justify-center items-center"))
		Expect(children[0].FirstChild).To(BeNil())

		Expect(children[1].Data).To(Equal("div"))
		Expect(class(children[1])).To(Equal(
			"w-full p-[1px] bg-gradient-to-r from-transparent via-foreground/10 to-transparent my-8"))
		Expect(children[1].FirstChild).To(BeNil())
	})

	It("renders identical markup every time", func() {
		Expect(render(view.Header())).To(Equal(render(view.Header())))
	})

	It("returns the writer error", func() {
		Expect(view.Header().Render(context.Background(), failingWriter{})).To(MatchError("closed"))
	})
})

var _ = Describe("Page", func() {
	It("places the header at the top of main and escapes the title", func() {
		out := render(view.Page("Models & runs", templ.Raw("<p>body</p>")))

		Expect(out).To(HavePrefix("<!DOCTYPE html>"))
		Expect(out).To(ContainSubstring("<title>Models &amp; runs</title>"))
		Expect(out).To(ContainSubstring(`href="/static/styles.css"`))

		main := out[strings.Index(out, "<main"):]
		main = main[strings.Index(main, ">")+1:]
		Expect(main).To(HavePrefix(render(view.Header()) + "<p>body</p>"))
	})

	It("accepts a nil body", func() {
		Expect(render(view.Page("x", nil))).To(HaveSuffix("</main></body></html>"))
	})

	It("propagates body errors", func() {
		failing := templ.ComponentFunc(func(context.Context, io.Writer) error {
			return errors.New("boom")
		})
		Expect(view.Page("x", failing).Render(context.Background(), io.Discard)).To(MatchError("boom"))
	})
})

var _ = Describe("Static", func() {
	It("serves the stylesheet", func() {
		rec := httptest.NewRecorder()
		view.Static().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/styles.css", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Content-Type")).To(HavePrefix("text/css"))
		Expect(rec.Body.String()).To(ContainSubstring(".gap-16"))
	})

	It("returns 404 for unknown assets", func() {
		rec := httptest.NewRecorder()
		view.Static().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/missing.js", nil))

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("builds a handler without panicking", func() {
		var handler http.Handler
		Expect(func() { handler = view.Static() }).NotTo(Panic())
		Expect(handler).NotTo(BeNil())
	})

	It("does not serve paths outside the asset directory", func() {
		rec := httptest.NewRecorder()
		view.Static().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static.go", nil))

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})
})
