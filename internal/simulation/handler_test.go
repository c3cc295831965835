package simulation_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"

	"github.com/frahmantamala/salary-simulator/internal"
	"github.com/frahmantamala/salary-simulator/internal/core/database"
	"github.com/frahmantamala/salary-simulator/internal/core/events"
	"github.com/frahmantamala/salary-simulator/internal/reference"
	referencePostgres "github.com/frahmantamala/salary-simulator/internal/reference/postgres"
	"github.com/frahmantamala/salary-simulator/internal/simulation"
	simulationPostgres "github.com/frahmantamala/salary-simulator/internal/simulation/postgres"
	"github.com/frahmantamala/salary-simulator/internal/transport"
	"github.com/frahmantamala/salary-simulator/internal/web"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Simulation Handler Integration", func() {
	var (
		router  http.Handler
		service *simulation.Service
		catalog *reference.Catalog
		ctx     context.Context
	)

	const userID int64 = 1

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		ctx = context.Background()

		db, err := database.OpenMemory()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(db.Close)

		references := reference.NewService(referencePostgres.NewReferenceRepository(db.Gorm), events.Nop, slogger)
		catalog = reference.DefaultCatalog()
		Expect(references.Seed(ctx, catalog)).To(Succeed())

		service = simulation.NewService(
			simulationPostgres.NewSimulationRepository(db.Gorm),
			simulationPostgres.NewSummaryReader(db.SQLX),
			references,
			events.Nop,
			slogger,
		)

		views, err := web.NewRenderer()
		Expect(err).NotTo(HaveOccurred())
		handler := simulation.NewHandler(transport.NewBaseHandler(slogger, views), service, references)

		r := chi.NewRouter()
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				user := &internal.SessionUser{ID: userID, Email: "test@test.com"}
				next.ServeHTTP(w, req.WithContext(internal.ContextWithSessionUser(req.Context(), user)))
			})
		})
		r.Get("/", handler.Home)
		r.Get("/simulations", handler.List)
		r.Post("/simulations", handler.ListAction)
		r.Get("/simulations/new", handler.New)
		r.Post("/simulations/new", handler.Create)
		r.Get("/simulations/{id}", handler.Detail)
		r.Get("/simulations/edit/{id}", handler.Edit)
		r.Post("/simulations/edit/{id}", handler.EditAction)
		router = r
	})

	jobID := func(i int) string { return fmt.Sprint(catalog.Jobs[i].ID) }
	experienceID := func(i int) string { return fmt.Sprint(catalog.Experiences[i].ID) }
	seniorityID := func(i int) string { return fmt.Sprint(catalog.Seniorities[i].ID) }

	postForm := func(path string, form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	postJSON := func(path string, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	createSimulation := func(name string) *simulation.Simulation {
		sim, err := service.Create(ctx, userID, simulation.Input{
			Name:         name,
			JobID:        &catalog.Jobs[0].ID,
			ExperienceID: &catalog.Experiences[1].ID,
			SeniorityID:  &catalog.Seniorities[1].ID,
		})
		Expect(err).NotTo(HaveOccurred())
		return sim
	}

	Describe("POST /simulations/new", func() {
		It("redirects to the detail page of the new simulation", func() {
			w := postForm("/simulations/new", url.Values{
				"name":       {"My first simulation"},
				"job":        {jobID(0)},
				"experience": {experienceID(1)},
				"seniority":  {seniorityID(1)},
			})

			Expect(w.Code).To(Equal(http.StatusSeeOther))
			Expect(w.Header().Get("Location")).To(MatchRegexp(`^/simulations/\d+$`))

			detail := get(w.Header().Get("Location"))
			Expect(detail.Code).To(Equal(http.StatusOK))
			Expect(detail.Body.String()).To(ContainSubstring("My first simulation"))
			Expect(detail.Body.String()).To(ContainSubstring("49 000 €"))
		})

		It("answers JSON clients with the created simulation", func() {
			body := fmt.Sprintf(`{"name":"Api","job":%s,"experience":%s,"seniority":%s}`, jobID(1), experienceID(3), seniorityID(3))
			w := postJSON("/simulations/new", body)

			Expect(w.Code).To(Equal(http.StatusCreated))
			var resp struct {
				Message string                `json:"message"`
				Data    simulation.Simulation `json:"data"`
			}
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Message).To(Equal(simulation.MessageCreated))
			Expect(resp.Data.Salary).To(Equal(83000.0))
		})

		It("reports only the first missing field", func() {
			w := postJSON("/simulations/new", `{"name":"Incomplete"}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			var resp transport.ActionData
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Errors).To(Equal(map[string]string{"job": "Job is required"}))
		})

		It("re-renders the form with the error and the submitted name", func() {
			w := postForm("/simulations/new", url.Values{"name": {"Half done"}, "job": {jobID(0)}})

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("Experience is required"))
			Expect(w.Body.String()).To(ContainSubstring(`value="Half done"`))
		})
	})

	Describe("posted reference ids", func() {
		It("reports a zero job id as not found, for forms and JSON alike", func() {
			form := postForm("/simulations/new", url.Values{
				"name":       {"Zero job"},
				"job":        {"0"},
				"experience": {experienceID(1)},
				"seniority":  {seniorityID(1)},
			})
			Expect(form.Code).To(Equal(http.StatusNotFound))
			Expect(form.Body.String()).To(ContainSubstring("Job 0 not found"))

			body := fmt.Sprintf(`{"name":"Zero job","job":0,"experience":%s,"seniority":%s}`, experienceID(1), seniorityID(1))
			api := postJSON("/simulations/new", body)
			Expect(api.Code).To(Equal(http.StatusNotFound))
			var resp transport.ActionData
			Expect(json.NewDecoder(api.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Errors).To(Equal(map[string]string{internal.FieldCommon: "Job 0 not found"}))
		})

		It("reports unparsable and negative ids as not found", func() {
			w := postForm("/simulations/new", url.Values{
				"name":       {"Bad ids"},
				"job":        {jobID(0)},
				"experience": {"-3"},
				"seniority":  {seniorityID(1)},
			})
			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(w.Body.String()).To(ContainSubstring("Experience -3 not found"))

			Expect(postForm("/simulations", url.Values{"intent": {"refresh"}, "id": {"abc"}}).Code).To(Equal(http.StatusNotFound))
		})

		It("still treats an empty value as missing", func() {
			var req simulation.SimulationRequest
			req.BindForm(url.Values{"name": {"Blank"}, "job": {"  "}, "experience": {"0"}})

			Expect(req.Job).To(BeNil())
			Expect(req.Experience).NotTo(BeNil())
			Expect(*req.Experience).To(BeZero())
			Expect(req.Seniority).To(BeNil())
		})
	})

	Describe("GET /simulations", func() {
		It("lists the user's simulations newest first", func() {
			createSimulation("Older")
			createSimulation("Newer")

			req := httptest.NewRequest(http.MethodGet, "/simulations", nil)
			req.Header.Set("Accept", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var page simulation.ListPage
			Expect(json.NewDecoder(w.Body).Decode(&page)).To(Succeed())
			Expect(page.Simulations).To(HaveLen(2))
			Expect(page.Simulations[0].Name).To(Equal("Newer"))
			Expect(page.Simulations[0].JobName).To(Equal("DEVELOPER"))
			Expect(page.Simulations[0].ExperienceName).To(Equal("JUNIOR"))
		})
	})

	Describe("POST /simulations", func() {
		It("deletes a simulation and confirms it", func() {
			sim := createSimulation("Doomed")

			w := postForm("/simulations", url.Values{"intent": {"delete"}, "id": {fmt.Sprint(sim.ID)}})

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(simulation.MessageDeleted))
			_, err := service.Get(ctx, sim.ID, userID, false)
			Expect(err).To(MatchError(internal.ErrSimulationNotFound))
		})

		It("refreshes a simulation", func() {
			sim := createSimulation("Fresh")

			w := postJSON("/simulations", fmt.Sprintf(`{"intent":"refresh","id":%d}`, sim.ID))

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp transport.ActionData
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Message).To(Equal(simulation.MessageUpdated))
		})

		It("rejects an unknown intent", func() {
			sim := createSimulation("Kept")

			w := postJSON("/simulations", fmt.Sprintf(`{"intent":"explode","id":%d}`, sim.ID))
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns not found for a missing simulation", func() {
			w := postJSON("/simulations", `{"intent":"delete","id":999}`)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("GET /simulations/{id}", func() {
		It("returns not found for an unknown id", func() {
			Expect(get("/simulations/999").Code).To(Equal(http.StatusNotFound))
		})

		It("returns not found for a malformed id", func() {
			Expect(get("/simulations/abc").Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("POST /simulations/edit/{id}", func() {
		It("recalculates with the new selections", func() {
			sim := createSimulation("Editable")

			w := postForm(fmt.Sprintf("/simulations/edit/%d", sim.ID), url.Values{
				"intent":     {"calculate"},
				"name":       {"Edited"},
				"job":        {jobID(1)},
				"experience": {experienceID(3)},
				"seniority":  {seniorityID(3)},
			})

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(simulation.MessageUpdated))
			Expect(w.Body.String()).To(ContainSubstring("83 000 €"))

			stored, err := service.Get(ctx, sim.ID, userID, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Name).To(Equal("Edited"))
			Expect(stored.Salary).To(Equal(83000.0))
		})

		It("keeps the stored values when the name is missing", func() {
			sim := createSimulation("Untouched")

			w := postJSON(fmt.Sprintf("/simulations/edit/%d", sim.ID), fmt.Sprintf(
				`{"intent":"calculate","name":"","job":%s,"experience":%s,"seniority":%s}`, jobID(1), experienceID(3), seniorityID(3)))

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			var resp transport.ActionData
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Errors).To(HaveKeyWithValue("name", "Name is required"))

			stored, err := service.Get(ctx, sim.ID, userID, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Name).To(Equal("Untouched"))
		})

		It("returns not found for another user's simulation", func() {
			other, err := service.Create(ctx, userID+1, simulation.Input{
				Name:         "Not mine",
				JobID:        &catalog.Jobs[0].ID,
				ExperienceID: &catalog.Experiences[0].ID,
				SeniorityID:  &catalog.Seniorities[0].ID,
			})
			Expect(err).NotTo(HaveOccurred())

			w := postJSON(fmt.Sprintf("/simulations/edit/%d", other.ID), `{"intent":"refresh"}`)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("GET /", func() {
		It("shows the latest simulations", func() {
			createSimulation("On the home page")

			w := get("/")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring("On the home page"))
		})
	})
})
