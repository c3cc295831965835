package settings_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/frahmantamala/salary-simulator/internal"
	"github.com/frahmantamala/salary-simulator/internal/core/database"
	"github.com/frahmantamala/salary-simulator/internal/core/events"
	"github.com/frahmantamala/salary-simulator/internal/reference"
	referencePostgres "github.com/frahmantamala/salary-simulator/internal/reference/postgres"
	"github.com/frahmantamala/salary-simulator/internal/settings"
	"github.com/frahmantamala/salary-simulator/internal/simulation"
	simulationPostgres "github.com/frahmantamala/salary-simulator/internal/simulation/postgres"
	"github.com/frahmantamala/salary-simulator/internal/transport"
	"github.com/frahmantamala/salary-simulator/internal/web"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSettings(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Settings Suite")
}

var _ = Describe("Settings Handler Integration", func() {
	var (
		handler     *settings.Handler
		references  *reference.Service
		simulations *simulation.Service
		catalog     *reference.Catalog
		ctx         context.Context
	)

	const userID int64 = 1

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
		ctx = context.Background()

		db, err := database.OpenMemory()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(db.Close)

		references = reference.NewService(referencePostgres.NewReferenceRepository(db.Gorm), events.Nop, slogger)
		catalog = reference.DefaultCatalog()
		Expect(references.Seed(ctx, catalog)).To(Succeed())

		simulations = simulation.NewService(
			simulationPostgres.NewSimulationRepository(db.Gorm),
			simulationPostgres.NewSummaryReader(db.SQLX),
			references,
			events.Nop,
			slogger,
		)

		views, err := web.NewRenderer()
		Expect(err).NotTo(HaveOccurred())
		handler = settings.NewHandler(transport.NewBaseHandler(slogger, views), settings.NewService(references, simulations, slogger))
	})

	withUser := func(req *http.Request) *http.Request {
		user := &internal.SessionUser{ID: userID, Email: "test@test.com", IsAdmin: true}
		return req.WithContext(internal.ContextWithSessionUser(req.Context(), user))
	}

	postForm := func(form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/settings", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		handler.Action(w, withUser(req))
		return w
	}

	postJSON := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/settings", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		handler.Action(w, withUser(req))
		return w
	}

	currentCatalog := func() *reference.Catalog {
		c, err := references.ListAll(ctx)
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	It("renders every weight in display order", func() {
		req := httptest.NewRequest(http.MethodGet, "/settings", nil)
		w := httptest.NewRecorder()
		handler.Show(w, withUser(req))

		Expect(w.Code).To(Equal(http.StatusOK))
		body := w.Body.String()
		Expect(strings.Index(body, "DEVELOPER")).To(BeNumerically("<", strings.Index(body, "SUPPORT")))
		Expect(body).To(ContainSubstring(`value="1.2"`))
	})

	It("updates only the submitted row", func() {
		hr := catalog.Jobs[2]

		w := postForm(url.Values{
			"intent": {"save"},
			"table":  {"job"},
			"id":     {fmt.Sprint(hr.ID)},
			"value":  {"45000"},
		})

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(settings.MessageSaved))

		after := currentCatalog()
		for i, job := range after.Jobs {
			if job.ID == hr.ID {
				Expect(job.Value).To(Equal(45000.0))
			} else {
				Expect(job.Value).To(Equal(catalog.Jobs[i].Value))
			}
		}
	})

	It("saves rows from several tables at once", func() {
		w := postJSON(fmt.Sprintf(`{"intent":"save","weights":[
			{"table":"experience","id":%d,"value":1.3},
			{"table":"seniority","id":%d,"value":1500}
		]}`, catalog.Experiences[1].ID, catalog.Seniorities[1].ID))

		Expect(w.Code).To(Equal(http.StatusOK))
		after := currentCatalog()
		Expect(after.Experiences[1].Value).To(Equal(1.3))
		Expect(after.Seniorities[1].Value).To(Equal(1500.0))
	})

	It("saves nothing when one id is unknown", func() {
		w := postJSON(fmt.Sprintf(`{"intent":"save","weights":[
			{"table":"job","id":%d,"value":1},
			{"table":"job","id":999,"value":2}
		]}`, catalog.Jobs[0].ID))

		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(currentCatalog().Jobs[0].Value).To(Equal(40000.0))
	})

	It("saves negative weights as submitted", func() {
		w := postJSON(fmt.Sprintf(`{"intent":"save","weights":[{"table":"seniority","id":%d,"value":-1}]}`, catalog.Seniorities[0].ID))

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp transport.ActionData
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Message).To(Equal(settings.MessageSaved))
		Expect(currentCatalog().Seniorities[0].Value).To(Equal(-1.0))
	})

	It("rejects values that are not numbers", func() {
		w := postForm(url.Values{"intent": {"save"}, "table": {"job"}, "id": {fmt.Sprint(catalog.Jobs[0].ID)}, "value": {"NaN"}})

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(currentCatalog().Jobs[0].Value).To(Equal(catalog.Jobs[0].Value))
	})

	It("rejects unknown tables", func() {
		w := postJSON(fmt.Sprintf(`{"intent":"save","weights":[{"table":"salary","id":%d,"value":1}]}`, catalog.Jobs[0].ID))
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("rejects mismatched form arrays", func() {
		w := postForm(url.Values{"intent": {"save"}, "table": {"job", "job"}, "id": {"1"}, "value": {"1"}})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("refreshes every simulation of the user with the current weights", func() {
		sim, err := simulations.Create(ctx, userID, simulation.Input{
			Name:         "Stale",
			JobID:        &catalog.Jobs[0].ID,
			ExperienceID: &catalog.Experiences[0].ID,
			SeniorityID:  &catalog.Seniorities[0].ID,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(sim.Salary).To(Equal(40000.0))

		Expect(references.SaveWeights(ctx, []reference.WeightUpdate{
			{Table: reference.KindJob, ID: catalog.Jobs[0].ID, Value: 42000},
		})).To(Succeed())

		w := postJSON(`{"intent":"refresh"}`)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp struct {
			Message string                 `json:"message"`
			Data    settings.RefreshResult `json:"data"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Message).To(Equal(settings.MessageRefreshed))
		Expect(resp.Data.Count).To(Equal(1))

		refreshed, err := simulations.Get(ctx, sim.ID, userID, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(refreshed.Salary).To(Equal(42000.0))
	})

	It("rejects an unknown intent", func() {
		w := postJSON(`{"intent":"explode"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
