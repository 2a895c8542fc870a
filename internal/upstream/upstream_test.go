package upstream_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/modelhub-web/internal/upstream"
	"github.com/angeloszaimis/modelhub-web/pkg/logger"
)

var _ = Describe("Upstream", func() {
	var u *upstream.Upstream

	BeforeEach(func() {
		u = upstream.New(mustParseURL("http://127.0.0.1:8000/ignored/path"), upstream.Options{}, logger.Discard())
	})

	Describe("New", func() {
		It("should keep only scheme and host", func() {
			Expect(u.Origin().String()).To(Equal("http://127.0.0.1:8000"))
		})

		It("should start healthy", func() {
			Expect(u.IsHealthy()).To(BeTrue())
		})

		It("should start with no requests in flight", func() {
			Expect(u.InFlight()).To(Equal(0))
		})

		It("should return the same proxy instance", func() {
			Expect(u.ReverseProxy()).NotTo(BeNil())
			Expect(u.ReverseProxy()).To(BeIdenticalTo(u.ReverseProxy()))
		})
	})

	Describe("SetHealthy", func() {
		It("should report changes only", func() {
			Expect(u.SetHealthy(true)).To(BeFalse())
			Expect(u.SetHealthy(false)).To(BeTrue())
			Expect(u.IsHealthy()).To(BeFalse())
			Expect(u.SetHealthy(false)).To(BeFalse())
			Expect(u.SetHealthy(true)).To(BeTrue())
		})

		It("should be thread-safe", func() {
			var wg sync.WaitGroup
			for i := 0; i < 100; i++ {
				wg.Add(1)
				go func(healthy bool) {
					defer wg.Done()
					u.SetHealthy(healthy)
					_ = u.IsHealthy()
				}(i%2 == 0)
			}
			wg.Wait()
		})
	})

	Describe("In-flight tracking", func() {
		It("should count acquire and release", func() {
			u.Acquire()
			u.Acquire()
			Expect(u.InFlight()).To(Equal(2))
			u.Release()
			Expect(u.InFlight()).To(Equal(1))
		})

		It("should not go below zero", func() {
			u.Release()
			Expect(u.InFlight()).To(Equal(0))
		})

		It("should be thread-safe", func() {
			var wg sync.WaitGroup
			for i := 0; i < 100; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					u.Acquire()
				}()
			}
			wg.Wait()
			Expect(u.InFlight()).To(Equal(100))
		})
	})

	Describe("RecordResponse", func() {
		It("should report zero before any response", func() {
			Expect(u.AverageResponse()).To(BeZero())
		})

		It("should seed with the first response", func() {
			u.RecordResponse(100 * time.Millisecond)
			Expect(u.AverageResponse()).To(Equal(100 * time.Millisecond))
		})

		It("should smooth later responses", func() {
			u.RecordResponse(100 * time.Millisecond)
			u.RecordResponse(200 * time.Millisecond)
			Expect(u.AverageResponse()).To(Equal(120 * time.Millisecond))
		})
	})

	Describe("ReverseProxy", func() {
		It("should forward the rewritten path to the origin", func() {
			var gotPath, gotHost, gotXFF string
			origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.RequestURI()
				gotHost = r.Host
				gotXFF = r.Header.Get("X-Forwarded-For")
				_, _ = io.WriteString(w, "ok")
			}))
			defer origin.Close()

			up := upstream.New(mustParseURL(origin.URL), upstream.Options{}, logger.Discard())

			req := httptest.NewRequest(http.MethodGet, "http://front.local/models?limit=2", nil)
			rec := httptest.NewRecorder()
			up.ReverseProxy().ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(Equal("ok"))
			Expect(gotPath).To(Equal("/models?limit=2"))
			Expect(gotHost).To(Equal(mustParseURL(origin.URL).Host))
			Expect(gotXFF).NotTo(BeEmpty())
		})

		It("should answer 502 when the origin is unreachable", func() {
			origin := httptest.NewServer(http.NotFoundHandler())
			addr := origin.URL
			origin.Close()

			up := upstream.New(mustParseURL(addr), upstream.Options{DialTimeout: time.Second}, logger.Discard())
			rec := httptest.NewRecorder()
			up.ReverseProxy().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/models", nil))
			Expect(rec.Code).To(Equal(http.StatusBadGateway))
		})
	})
})

var _ = Describe("Set", func() {
	var set upstream.Set

	BeforeEach(func() {
		set = upstream.NewSet([]*url.URL{
			mustParseURL("http://127.0.0.1:8000/:path*"),
			mustParseURL("https://files.internal"),
		}, upstream.Options{}, logger.Discard())
	})

	It("should index upstreams by origin", func() {
		Expect(set).To(HaveLen(2))
		u, ok := set.Lookup(mustParseURL("http://127.0.0.1:8000/models"))
		Expect(ok).To(BeTrue())
		Expect(u.Origin().String()).To(Equal("http://127.0.0.1:8000"))
	})

	It("should miss unknown origins", func() {
		_, ok := set.Lookup(mustParseURL("http://127.0.0.1:9000"))
		Expect(ok).To(BeFalse())
	})

	It("should be healthy only when every upstream is", func() {
		Expect(set.Healthy()).To(BeTrue())
		u, _ := set.Lookup(mustParseURL("https://files.internal"))
		u.SetHealthy(false)
		Expect(set.Healthy()).To(BeFalse())
	})
})
