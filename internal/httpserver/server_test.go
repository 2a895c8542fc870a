package httpserver_test

import (
	"context"
	"io"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/modelhub-web/internal/httpserver"
)

var _ = Describe("HTTP Server", func() {
	noop := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	DescribeTable("server creation",
		func(addr string, valid bool) {
			srv, err := httpserver.New(addr, noop, httpserver.Timeouts{})
			if valid {
				Expect(err).NotTo(HaveOccurred())
				Expect(srv.Addr()).To(Equal(addr))
			} else {
				Expect(err).To(HaveOccurred())
				Expect(srv).To(BeNil())
			}
		},
		Entry("hostname", "localhost:9999", true),
		Entry("ip address", "127.0.0.1:9999", true),
		Entry("port only", ":3000", true),
		Entry("too many colons", "invalid:host:port", false),
		Entry("missing port", "localhost", false),
		Entry("empty port", "localhost:", false),
	)

	Context("server lifecycle", func() {
		var testServer *httpserver.Server

		AfterEach(func() {
			if testServer != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
				defer cancel()
				_ = testServer.Shutdown(ctx)
			}
		})

		It("starts and handles requests", func() {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("test"))
			})
			var err error
			testServer, err = httpserver.New("127.0.0.1:19999", handler, httpserver.Timeouts{})
			Expect(err).NotTo(HaveOccurred())

			go func() {
				defer GinkgoRecover()
				Expect(testServer.Start()).To(Succeed())
			}()

			var resp *http.Response
			Eventually(func() error {
				resp, err = http.Get("http://127.0.0.1:19999")
				return err
			}).Should(Succeed())
			defer resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			body, _ := io.ReadAll(resp.Body)
			Expect(string(body)).To(Equal("test"))
		})

		It("shuts down gracefully", func() {
			var err error
			testServer, err = httpserver.New("127.0.0.1:19998", noop, httpserver.Timeouts{Shutdown: time.Second})
			Expect(err).NotTo(HaveOccurred())

			done := make(chan error, 1)
			go func() {
				done <- testServer.Start()
			}()

			Eventually(func() error {
				resp, err := http.Get("http://127.0.0.1:19998")
				if err == nil {
					resp.Body.Close()
				}
				return err
			}).Should(Succeed())

			Expect(testServer.Shutdown(context.Background())).To(Succeed())
			Eventually(done).Should(Receive(BeNil()))
		})

		It("stops waiting for in-flight requests after the shutdown timeout", func() {
			entered := make(chan struct{})
			release := make(chan struct{})
			slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/slow" {
					return
				}
				close(entered)
				<-release
			})
			defer close(release)

			var err error
			testServer, err = httpserver.New("127.0.0.1:19997", slow, httpserver.Timeouts{Shutdown: 50 * time.Millisecond})
			Expect(err).NotTo(HaveOccurred())

			go func() {
				_ = testServer.Start()
			}()

			Eventually(func() error {
				resp, err := http.Get("http://127.0.0.1:19997")
				if err == nil {
					resp.Body.Close()
				}
				return err
			}).Should(Succeed())

			go func() {
				if resp, err := http.Get("http://127.0.0.1:19997/slow"); err == nil {
					resp.Body.Close()
				}
			}()
			Eventually(entered).Should(BeClosed())

			started := time.Now()
			Expect(testServer.Shutdown(context.Background())).To(MatchError(context.DeadlineExceeded))
			Expect(time.Since(started)).To(BeNumerically("<", time.Second))
		})
	})
})
