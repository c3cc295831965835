package postgres_test

import (
	"context"

	"github.com/DATA-DOG/go-sqlmock"
	simulationPostgres "github.com/frahmantamala/salary-simulator/internal/simulation/postgres"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Summary Reader", func() {
	var (
		mock sqlmock.Sqlmock
		db   *sqlx.DB
	)

	BeforeEach(func() {
		mockDB, m, err := sqlmock.New()
		Expect(err).NotTo(HaveOccurred())
		mock = m
		db = sqlx.NewDb(mockDB, "pgx")
		// expectations are ordered, so the close is expected after each spec's queries
		DeferCleanup(func() error {
			mock.ExpectClose()
			return db.Close()
		})
	})

	columns := []string{"id", "name", "salary", "job_name", "experience_name", "seniority_name"}

	It("binds postgres placeholders and maps the joined names", func() {
		mock.ExpectQuery(`WHERE s\.user_id = \$1 ORDER BY s\.id DESC$`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(2, "My second simulation", 83000.0, "DATA_SCIENTIST", "SENIOR", "SENIOR").
				AddRow(1, "My first simulation", 49000.0, "DEVELOPER", "JUNIOR", "JUNIOR"))

		rows, err := simulationPostgres.NewSummaryReader(db).ListByUser(context.Background(), 7, 0)

		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2))
		Expect(rows[0].Name).To(Equal("My second simulation"))
		Expect(rows[0].JobName).To(Equal("DATA_SCIENTIST"))
		Expect(rows[1].SeniorityName).To(Equal("JUNIOR"))
		Expect(mock.ExpectationsWereMet()).To(Succeed())
	})

	It("appends the limit as a second parameter", func() {
		mock.ExpectQuery(`ORDER BY s\.id DESC LIMIT \$2$`).
			WithArgs(int64(7), int64(5)).
			WillReturnRows(sqlmock.NewRows(columns))

		rows, err := simulationPostgres.NewSummaryReader(db).ListByUser(context.Background(), 7, 5)

		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(BeEmpty())
		Expect(rows).NotTo(BeNil())
		Expect(mock.ExpectationsWereMet()).To(Succeed())
	})

	It("returns driver errors", func() {
		mock.ExpectQuery(`FROM simulations`).WillReturnError(sqlmock.ErrCancelled)

		_, err := simulationPostgres.NewSummaryReader(db).ListByUser(context.Background(), 7, 0)
		Expect(err).To(HaveOccurred())
	})
})
