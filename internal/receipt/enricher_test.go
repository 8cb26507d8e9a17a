package receipt_test

import (
	"context"
	"errors"
	"receipts/internal/pkg/airtable"
	"receipts/internal/pkg/github"
	"receipts/internal/receipt"
	"receipts/internal/testhelpers"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Enricher", func() {
	var (
		ctx      context.Context
		gh       *github.Client
		enricher *receipt.Enricher
		record   airtable.Record
	)

	filesOf := func(number string, body string) {
		testhelpers.New("https://api.github.com").
			Get("/repos/hackclub/sprig/pulls/" + number + "/files").
			Reply(200).
			BodyString(body)
	}

	BeforeEach(func() {
		ctx = context.Background()
		testhelpers.Activate()

		gh = github.New("")
		gh.UseDefaultClient()

		newYork, err := time.LoadLocation("America/New_York")
		Expect(err).NotTo(HaveOccurred())

		enricher = receipt.NewEnricher(gh, receipt.Options{GrantType: "sprig", Location: newYork})

		record = airtable.Record{
			ID:          "recA",
			CreatedTime: "2024-03-05T19:30:00.000Z",
			Fields: map[string]any{
				"Name":                          "Ada Lovelace",
				"Email":                         "ada@example.com",
				"GitHub Username":               "adalovelace",
				"Pull Request":                  "https://github.com/hackclub/sprig/pull/1234",
				"City":                          "London",
				"State or Province":             "Greater London",
				"Country":                       "United Kingdom",
				"Age (years)":                   float64(16),
				"How did you hear about Sprig?": []any{"A friend", "Discord"},
				"In a club?":                    true,
			},
		}
	})

	AfterEach(func() {
		testhelpers.Deactivate()
	})

	It("builds a complete receipt", func() {
		filesOf("1234", `[{"filename": "games/img/Foo.png"}, {"filename": "games/Foo.js"}, {"filename": "games/img/Foo (1).png"}]`)

		r, err := enricher.Enrich(ctx, record)
		Expect(err).NotTo(HaveOccurred())
		Expect(testhelpers.IsDone()).To(BeTrue())

		Expect(r.RecordID).To(Equal("recA"))
		Expect(r.GrantType).To(Equal("sprig"))
		Expect(r.DateTime).To(Equal("2024-03-05T19:30:00.000Z"))
		Expect(r.LocalTime).To(Equal("03/05/2024 – 02:30PM"))
		Expect(r.Name).To(Equal("Ada Lovelace"))
		Expect(r.AvatarURL).To(Equal("https://github.com/adalovelace.png"))
		Expect(r.City).To(Equal("London"))
		Expect(r.State).To(Equal("Greater London"))
		Expect(r.Country).To(Equal("United Kingdom"))
		Expect(r.Age).To(Equal("16"))

		Expect(r.ProjectInfo.Name).To(Equal("Foo"))
		Expect(r.ProjectInfo.ImageURL).To(Equal("https://github.com/hackclub/sprig/blob/main/games/img/Foo.png?raw=true"))
		Expect(r.ProjectInfo.QRCodes).To(Equal([]receipt.QRTarget{
			{Label: "Play Game", URL: "https://sprig.hackclub.com/gallery/Foo"},
			{Label: "Pull Request", URL: "https://github.com/hackclub/sprig/pull/1234"},
			{Label: "Email", URL: "mailto:ada@example.com"},
		}))
	})

	It("answers the configured questions in order with empty defaults", func() {
		filesOf("1234", `[{"filename": "games/Foo.js"}]`)

		r, err := enricher.Enrich(ctx, record)
		Expect(err).NotTo(HaveOccurred())

		Expect(r.QA).To(Equal([]receipt.QuestionAnswer{
			{Question: "How did you hear about Sprig?", Answer: "A friend, Discord"},
			{Question: "Is this the first video game you’ve made?", Answer: ""},
			{Question: "What are we doing well?", Answer: ""},
			{Question: "How can we improve?", Answer: ""},
			{Question: "Are you in a club?", Answer: "true"},
		}))
	})

	It("uses a custom question list", func() {
		filesOf("1234", `[{"filename": "games/Foo.js"}]`)
		enricher = receipt.NewEnricher(gh, receipt.Options{
			Questions: []receipt.Question{{Label: "Where are you?", Field: "City"}},
		})

		r, err := enricher.Enrich(ctx, record)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.QA).To(Equal([]receipt.QuestionAnswer{{Question: "Where are you?", Answer: "London"}}))
	})

	It("still produces a receipt when the pull request adds no project file", func() {
		filesOf("1234", `[{"filename": "games/img/Foo.png"}, {"filename": "README.md"}]`)

		r, err := enricher.Enrich(ctx, record)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.ProjectInfo.Name).To(BeEmpty())
		Expect(r.ProjectInfo.ImageURL).To(BeEmpty())
		Expect(r.ProjectInfo.QRCodes[0]).To(Equal(receipt.QRTarget{Label: "Play Game", URL: ""}))
		Expect(r.ProjectInfo.QRCodes[1].URL).To(Equal("https://github.com/hackclub/sprig/pull/1234"))
	})

	It("defaults every missing field to an empty string", func() {
		record.Fields = map[string]any{"Pull Request": "https://github.com/hackclub/sprig/pull/1234"}
		filesOf("1234", `[]`)

		r, err := enricher.Enrich(ctx, record)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Name).To(BeEmpty())
		Expect(r.AvatarURL).To(BeEmpty())
		Expect(r.Age).To(BeEmpty())
		Expect(r.ProjectInfo.QRCodes[2].URL).To(Equal("mailto:"))
	})

	It("fails without calling GitHub for a malformed pull request URL", func() {
		record.Fields["Pull Request"] = "not-a-url"

		_, err := enricher.Enrich(ctx, record)
		Expect(errors.Is(err, github.ErrInvalidReference)).To(BeTrue())
		Expect(testhelpers.Requests()).To(BeEmpty())
	})

	It("fails when GitHub answers with an error", func() {
		testhelpers.New("https://api.github.com").
			Get("/repos/hackclub/sprig/pulls/1234/files").
			Reply(403).
			BodyString(`{"message": "API rate limit exceeded"}`)

		_, err := enricher.Enrich(ctx, record)

		var upstream *github.UpstreamError
		Expect(errors.As(err, &upstream)).To(BeTrue())
		Expect(upstream.StatusCode).To(Equal(403))
	})

	It("fails on an unparsable creation time without calling GitHub", func() {
		record.CreatedTime = "yesterday"

		_, err := enricher.Enrich(ctx, record)
		Expect(errors.Is(err, receipt.ErrTimestampFormat)).To(BeTrue())
		Expect(testhelpers.Requests()).To(BeEmpty())
	})
})
