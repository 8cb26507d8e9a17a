package render_test

import (
	"context"
	"os"
	"path/filepath"
	"receipts/internal/receipt"
	"receipts/internal/render"
	"strings"

	"github.com/PuerkitoBio/goquery"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func sampleReceipt() *receipt.Receipt {
	return &receipt.Receipt{
		RecordID:  "recA1b2",
		GrantType: "sprig",
		DateTime:  "2024-03-05T19:30:00.000Z",
		LocalTime: "03/05/2024 – 02:30PM",
		Name:      "Ada Lovelace",
		AvatarURL: "https://github.com/adalovelace.png",
		City:      "London",
		State:     "Greater London",
		Country:   "United Kingdom",
		Age:       "16",
		QA: []receipt.QuestionAnswer{
			{Question: "How can we improve?", Answer: "More tutorials"},
			{Question: "Are you in a club?", Answer: ""},
		},
		ProjectInfo: receipt.ProjectInfo{
			Name:     "Foo",
			ImageURL: "https://github.com/hackclub/sprig/blob/main/games/img/Foo.png?raw=true",
			QRCodes: []receipt.QRTarget{
				{Label: "Play Game", URL: "https://sprig.hackclub.com/gallery/Foo"},
				{Label: "Pull Request", URL: "https://github.com/hackclub/sprig/pull/1234"},
				{Label: "Email", URL: "mailto:ada@example.com"},
			},
		},
	}
}

var _ = Describe("Renderer", func() {
	var (
		ctx    context.Context
		outDir string
	)

	BeforeEach(func() {
		ctx = context.Background()
		outDir = GinkgoT().TempDir()
	})

	newRenderer := func(opts render.Options) *render.Renderer {
		opts.OutputDir = outDir
		r, err := render.New(opts)
		Expect(err).NotTo(HaveOccurred())
		return r
	}

	It("renders the embedded template to HTML", func() {
		r := newRenderer(render.Options{Format: render.FormatHTML})

		path, err := r.Render(ctx, sampleReceipt(), "receipt.html")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(outDir, "receipt-recA1b2.html")))

		f, err := os.Open(path)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()

		doc, err := goquery.NewDocumentFromReader(f)
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Find(".name").Text()).To(Equal("Ada Lovelace"))
		Expect(doc.Find(".datetime").Text()).To(Equal("03/05/2024 – 02:30PM"))
		Expect(doc.Find(".location").Text()).To(Equal("London, Greater London, United Kingdom"))
		Expect(doc.Find(".question").Length()).To(Equal(2))
		Expect(doc.Find(".qr").Length()).To(Equal(3))
		Expect(doc.Find(".project h2").Text()).To(Equal("Foo"))
	})

	It("skips QR codes without a target", func() {
		rec := sampleReceipt()
		rec.ProjectInfo = receipt.ProjectInfo{QRCodes: []receipt.QRTarget{
			{Label: "Play Game", URL: ""},
			{Label: "Pull Request", URL: "https://github.com/hackclub/sprig/pull/1234"},
		}}
		r := newRenderer(render.Options{Format: render.FormatHTML})

		path, err := r.Render(ctx, rec, "receipt.html")
		Expect(err).NotTo(HaveOccurred())

		b, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(b)))
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Find(".qr").Length()).To(Equal(1))
		Expect(doc.Find(".project h2").Length()).To(BeZero())
	})

	It("writes plain text for raw text printers", func() {
		r := newRenderer(render.Options{Format: render.FormatText})

		path, err := r.Render(ctx, sampleReceipt(), "receipt.html")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(HaveSuffix("receipt-recA1b2.txt"))

		b, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		lines := strings.Split(strings.TrimSpace(string(b)), "\n")
		Expect(lines[0]).To(Equal("sprig grant"))
		Expect(lines).To(ContainElement("Ada Lovelace"))
		Expect(lines).To(ContainElement("How can we improve?"))
		Expect(lines).To(ContainElement("More tutorials"))
		Expect(lines).To(ContainElement("Play Game"))
		Expect(string(b)).NotTo(ContainSubstring("font-family"))
	})

	It("hands the HTML to the PDF converter", func() {
		// cp stands in for weasyprint: same "<in> <out>" calling convention
		r := newRenderer(render.Options{Format: render.FormatPDF, PDFConverter: "cp"})

		path, err := r.Render(ctx, sampleReceipt(), "receipt.html")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(outDir, "receipt-recA1b2.pdf")))
		Expect(path).To(BeAnExistingFile())
	})

	It("fails when the converter fails", func() {
		r := newRenderer(render.Options{Format: render.FormatPDF, PDFConverter: "false"})

		_, err := r.Render(ctx, sampleReceipt(), "receipt.html")
		Expect(err).To(MatchError(ContainSubstring("false failed")))
	})

	It("uses templates from a directory when configured", func() {
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "short.html"), []byte(`<p>{{.Name}} / {{.ProjectInfo.Name}}</p>`), 0644)).To(Succeed())
		r := newRenderer(render.Options{TemplateDir: dir, Format: render.FormatHTML})

		path, err := r.Render(ctx, sampleReceipt(), "short.html")
		Expect(err).NotTo(HaveOccurred())

		b, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(b)).To(Equal("<p>Ada Lovelace / Foo</p>"))
	})

	It("fails on an unknown template", func() {
		r := newRenderer(render.Options{Format: render.FormatHTML})

		_, err := r.Render(ctx, sampleReceipt(), "missing.html")
		Expect(err).To(HaveOccurred())
	})

	It("sanitises record ids used in file names", func() {
		rec := sampleReceipt()
		rec.RecordID = "../../etc/passwd"
		r := newRenderer(render.Options{Format: render.FormatHTML})

		path, err := r.Render(ctx, rec, "receipt.html")
		Expect(err).NotTo(HaveOccurred())
		Expect(filepath.Dir(path)).To(Equal(outDir))
	})

	It("rejects unknown formats", func() {
		_, err := render.New(render.Options{Format: "docx"})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("HTMLToText", func() {
	It("turns block elements into lines", func() {
		text, err := render.HTMLToText([]byte(`<html><head><style>p{}</style></head><body>
			<h1>Title</h1><p>first   line</p><div>second<br>third</div><img alt="logo" src="x.png"></body></html>`))
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("Title\nfirst line\nsecond\nthird\n[logo]\n"))
	})
})
