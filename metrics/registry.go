/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pbs_failover"

// Registry owns every metric this core publishes and the promhttp
// handler serving them. It is deliberately a fixed, concrete set of
// collectors rather than a dynamically-registered descriptor pool: this
// process only ever publishes these four series, so a generic
// registration API would have exactly one, permanently-fixed caller.
type Registry struct {
	reg *prometheus.Registry

	transitions  *prometheus.CounterVec
	handshakeAge prometheus.Gauge
	takeovers    prometheus.Counter
	fencing      *prometheus.CounterVec
}

// New builds a Registry with every series registered and ready to
// observe. role is attached as a constant label ("primary"/"secondary")
// so a shared scrape target distinguishes the two nodes.
func New(role string) *Registry {
	reg := prometheus.NewRegistry()

	constLabels := prometheus.Labels{"role": role}

	r := &Registry{
		reg: reg,
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "state_transitions_total",
			Help:        "Count of secondary state-machine transitions, labeled by origin and destination state.",
			ConstLabels: constLabels,
		}, []string{"from", "to"}),
		handshakeAge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "handshake_age_seconds",
			Help:        "Seconds since the last handshake reply was accepted from the peer.",
			ConstLabels: constLabels,
		}),
		takeovers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "takeovers_total",
			Help:        "Count of times this node became active via takeover.",
			ConstLabels: constLabels,
		}),
		fencing: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "fencing_outcomes_total",
			Help:        "Count of fencing hook invocations, labeled by outcome (ok, absent, failed).",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
	}

	reg.MustRegister(r.transitions, r.handshakeAge, r.takeovers, r.fencing)

	return r
}

// ObserveTransition records a secondary state-machine transition. from/to
// are expected to be failover.State.String() values; metrics takes plain
// strings rather than importing the failover package, to keep the pure
// state machine free of an observability dependency.
func (r *Registry) ObserveTransition(from, to string) {
	r.transitions.WithLabelValues(from, to).Inc()
}

// ObserveHandshakeAge records the elapsed time since the last accepted
// handshake reply.
func (r *Registry) ObserveHandshakeAge(age time.Duration) {
	r.handshakeAge.Set(age.Seconds())
}

// IncTakeover records one takeover-to-active transition.
func (r *Registry) IncTakeover() {
	r.takeovers.Inc()
}

// ObserveFencing records one fencing hook outcome: "ok", "absent", or
// "failed", matching failover.EventFenceOK/Absent/Failed.
func (r *Registry) ObserveFencing(outcome string) {
	r.fencing.WithLabelValues(outcome).Inc()
}

// Handler returns the promhttp handler serving this registry's series.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
