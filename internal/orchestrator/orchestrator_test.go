package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/pdfbw/internal/filetype"
	"github.com/local/pdfbw/internal/pdfdoc"
	"github.com/local/pdfbw/internal/pdfdoc/pdffixture"
	"github.com/local/pdfbw/internal/settings"
	"github.com/local/pdfbw/internal/source"
	"github.com/local/pdfbw/internal/transcoder"
)

type statusLog []Status

func (l *statusLog) add(st Status) { *l = append(*l, st) }

func (l statusLog) last() Status { return l[len(l)-1] }

func newTestOrchestrator(t *testing.T, opener pdfdoc.Opener) *Orchestrator {
	t.Helper()
	return New(Dependencies{Opener: opener, TempDir: t.TempDir()})
}

func TestConvertColorDocumentKeepsOriginalSize(t *testing.T) {
	dir := t.TempDir()
	in := pdffixture.Write(t, dir, "color.pdf",
		pdffixture.Color(200, 300), pdffixture.Color(200, 300), pdffixture.Color(200, 300))
	out := filepath.Join(dir, "out.pdf")

	var log statusLog
	res := newTestOrchestrator(t, nil).Convert(context.Background(), Request{Input: in, Output: out, Settings: settings.Default()}, log.add)
	require.True(t, res.OK, "%v", res.Err)
	assert.False(t, res.Copied)
	assert.Equal(t, 3, res.Pages)

	assert.Equal(t, Status{0, msgChecking}, log[0])
	assert.Equal(t, Status{100, msgConverted}, log.last())
	assert.Equal(t, "Processing page 2/3", log[2].Message)

	dims, err := api.PageDimsFile(out)
	require.NoError(t, err)
	require.Len(t, dims, 3)
	for _, d := range dims {
		assert.InDelta(t, 200, d.Width, 0.5)
		assert.InDelta(t, 300, d.Height, 0.5)
	}

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	pages, err := api.ExtractImagesRaw(f, nil, nil)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	for i, imgs := range pages {
		require.Len(t, imgs, 1, "page %d", i+1)
		for _, img := range imgs {
			assert.Equal(t, "DeviceGray", img.Cs, "page %d", i+1)
			assert.Equal(t, 1, img.Comp, "page %d", i+1)
			assert.Equal(t, 400, img.Width)
			assert.Equal(t, 600, img.Height)
		}
	}
}

func TestConvertGrayscaleDocumentIsByteCopy(t *testing.T) {
	dir := t.TempDir()
	in := pdffixture.Write(t, dir, "gray.pdf", pdffixture.Gray(200, 200))
	require.NoError(t, os.Chmod(in, 0o640))
	mtime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(in, mtime, mtime))
	out := filepath.Join(dir, "out.pdf")

	var log statusLog
	res := newTestOrchestrator(t, nil).Convert(context.Background(), Request{Input: in, Output: out, Settings: settings.Default()}, log.add)
	require.True(t, res.OK, "%v", res.Err)
	assert.True(t, res.Copied)
	assert.Equal(t, Status{100, msgCopied}, log.last())

	want, err := os.ReadFile(in)
	require.NoError(t, err)
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(want, got))

	fi, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), fi.Mode().Perm())
	assert.True(t, fi.ModTime().Equal(mtime))
}

func TestConvertA4OnLandscapePage(t *testing.T) {
	dir := t.TempDir()
	in := pdffixture.Write(t, dir, "wide.pdf", pdffixture.Color(400, 250))
	out := filepath.Join(dir, "out.pdf")
	s, err := settings.Default().WithOutputSize("A4", true)
	require.NoError(t, err)

	res := newTestOrchestrator(t, nil).Convert(context.Background(), Request{Input: in, Output: out, Settings: s}, nil)
	require.True(t, res.OK, "%v", res.Err)

	dims, err := api.PageDimsFile(out)
	require.NoError(t, err)
	require.Len(t, dims, 1)
	assert.InDelta(t, 842, dims[0].Width, 0.5)
	assert.InDelta(t, 595, dims[0].Height, 0.5)
}

func TestConvertFailures(t *testing.T) {
	dir := t.TempDir()
	colorPDF := pdffixture.Write(t, dir, "color.pdf", pdffixture.Color(60, 60))
	grayPDF := pdffixture.Write(t, dir, "gray.pdf", pdffixture.Gray(60, 60))
	notPDF := filepath.Join(dir, "notes.pdf")
	require.NoError(t, os.WriteFile(notPDF, []byte("plain text pretending to be a pdf"), 0o644))

	tests := []struct {
		name   string
		input  string
		output string
		kind   Kind
	}{
		{"missing input", filepath.Join(dir, "missing.pdf"), filepath.Join(dir, "o1.pdf"), KindInputNotFound},
		{"not a pdf", notPDF, filepath.Join(dir, "o2.pdf"), KindMalformed},
		{"unwritable transcode output", colorPDF, filepath.Join(dir, "no", "such", "dir.pdf"), KindOutputUnwritable},
		{"unwritable copy output", grayPDF, filepath.Join(dir, "no", "such", "dir.pdf"), KindOutputUnwritable},
		{"empty output", colorPDF, "", KindInvalidConfig},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var log statusLog
			res := newTestOrchestrator(t, nil).Convert(context.Background(),
				Request{Input: tc.input, Output: tc.output, Settings: settings.Default()}, log.add)
			assert.False(t, res.OK)
			require.Error(t, res.Err)
			assert.Equal(t, tc.kind, res.Kind(), "%v", res.Err)

			st := log.last()
			assert.Equal(t, 0.0, st.Progress)
			assert.Equal(t, "Error: "+res.Err.Error(), st.Message)
		})
	}
}

func TestConvertRefusesToOverwriteInput(t *testing.T) {
	dir := t.TempDir()
	grayPDF := pdffixture.Write(t, dir, "gray.pdf", pdffixture.Gray(80, 80))
	colorPDF := pdffixture.Write(t, dir, "color.pdf", pdffixture.Color(80, 80))
	linked := filepath.Join(dir, "linked.pdf")
	require.NoError(t, os.Link(grayPDF, linked))

	tests := []struct {
		name   string
		input  string
		output string
	}{
		{"grayscale onto itself", grayPDF, grayPDF},
		{"color onto itself", colorPDF, colorPDF},
		{"unclean path", grayPDF, filepath.Join(dir, ".", "gray.pdf")},
		{"hard link", grayPDF, linked},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			before, err := os.ReadFile(tc.input)
			require.NoError(t, err)

			var log statusLog
			res := newTestOrchestrator(t, nil).Convert(context.Background(),
				Request{Input: tc.input, Output: tc.output, Settings: settings.Default()}, log.add)
			assert.False(t, res.OK)
			assert.Equal(t, KindInvalidConfig, res.Kind(), "%v", res.Err)
			assert.Equal(t, 0.0, log.last().Progress)

			after, err := os.ReadFile(tc.input)
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestCopyFileRejectsSameFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.4 data"), 0o644))

	err := copyFile(src, src)
	require.Error(t, err)
	assert.ErrorIs(t, err, errSameFile)
	assert.Equal(t, KindInvalidConfig, KindOf(err))

	data, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 data", string(data))
}

func TestConvertRecoversPanics(t *testing.T) {
	dir := t.TempDir()
	in := pdffixture.Write(t, dir, "color.pdf", pdffixture.Color(60, 60))
	opener := pdfdoc.OpenerFunc(func(string) (pdfdoc.Doc, error) { panic("renderer exploded") })

	var log statusLog
	var res Result
	require.NotPanics(t, func() {
		res = newTestOrchestrator(t, opener).Convert(context.Background(),
			Request{Input: in, Output: filepath.Join(dir, "out.pdf"), Settings: settings.Default()}, log.add)
	})
	assert.False(t, res.OK)
	assert.Equal(t, KindUnknown, res.Kind())
	assert.Contains(t, log.last().Message, "renderer exploded")
}

func TestStartRejectsSecondJob(t *testing.T) {
	dir := t.TempDir()
	in := pdffixture.Write(t, dir, "gray.pdf", pdffixture.Gray(60, 60))
	release := make(chan struct{})
	opener := pdfdoc.OpenerFunc(func(path string) (pdfdoc.Doc, error) {
		<-release
		return pdfdoc.Open(path)
	})
	o := newTestOrchestrator(t, opener)
	req := Request{Input: in, Output: filepath.Join(dir, "out.pdf"), Settings: settings.Default()}

	job, err := o.Start(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, o.Running())

	_, err = o.Start(context.Background(), req)
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	var updates []Status
	for st := range job.Updates() {
		updates = append(updates, st)
	}
	res := job.Wait()
	require.True(t, res.OK, "%v", res.Err)
	assert.True(t, res.Copied)
	require.NotEmpty(t, updates)
	assert.Equal(t, msgChecking, updates[0].Message)
	assert.Equal(t, msgCopied, updates[len(updates)-1].Message)
	assert.False(t, o.Running())

	again, err := o.Start(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, again.Wait().OK)
}

func TestJobDeliversFinalStatusWithoutReader(t *testing.T) {
	dir := t.TempDir()
	in := pdffixture.Write(t, dir, "color.pdf", pdffixture.Color(40, 40))
	o := newTestOrchestrator(t, nil)

	job, err := o.Start(context.Background(), Request{Input: in, Output: filepath.Join(dir, "out.pdf"), Settings: settings.Default()})
	require.NoError(t, err)
	res := job.Wait()
	require.True(t, res.OK, "%v", res.Err)

	var last Status
	for st := range job.Updates() {
		last = st
	}
	assert.Equal(t, Status{100, msgConverted}, last)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		kind Kind
		page int
	}{
		{fmt.Errorf("resolve: %w", source.ErrNotFound), KindInputNotFound, -1},
		{os.ErrNotExist, KindInputNotFound, -1},
		{fmt.Errorf("%w (detected text/plain)", filetype.ErrNotPDF), KindMalformed, -1},
		{fmt.Errorf("%w: broken xref", transcoder.ErrOpen), KindMalformed, -1},
		{&pdfdoc.PageError{Page: 4, Err: errors.New("bad stream")}, KindRender, 4},
		{&transcoder.OutputError{Path: "/ro/out.pdf", Err: os.ErrPermission}, KindOutputUnwritable, -1},
		{settings.ErrInvalidSize, KindInvalidConfig, -1},
		{errors.New("something else"), KindUnknown, -1},
	}
	for _, tc := range tests {
		e := classify("op", tc.err)
		assert.Equal(t, tc.kind, e.Kind, "%v", tc.err)
		assert.Equal(t, tc.page, e.Page, "%v", tc.err)
		assert.ErrorIs(t, e, tc.err)
		assert.Equal(t, tc.kind, KindOf(fmt.Errorf("wrapped: %w", e)))
	}

	pre := &Error{Kind: KindRender, Page: 1, Op: "x", Err: errors.New("y")}
	assert.Same(t, pre, classify("other", pre))
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, "output_unwritable", KindOutputUnwritable.String())
}

func TestCleanupTemps(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().Add(-2 * time.Hour)
	mk := func(name string, mtime time.Time) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(p, 0o755))
		require.NoError(t, os.Chtimes(p, mtime, mtime))
		return p
	}
	stale := mk(transcoder.StagingPrefix+"stale", old)
	fresh := mk(transcoder.StagingPrefix+"fresh", time.Now())
	other := mk("unrelated", old)

	assert.Equal(t, 1, CleanupTemps(dir, time.Hour))
	assert.NoDirExists(t, stale)
	assert.DirExists(t, fresh)
	assert.DirExists(t, other)
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	gray := pdffixture.Write(t, dir, "gray.pdf", pdffixture.Gray(50, 50), pdffixture.Gray(50, 50))
	mixed := pdffixture.Write(t, dir, "mixed.pdf", pdffixture.Gray(50, 50), pdffixture.Color(50, 50))
	o := newTestOrchestrator(t, nil)

	v, err := o.Check(context.Background(), gray, 0, ConversionThreshold)
	require.NoError(t, err)
	assert.True(t, v.Grayscale)
	assert.Equal(t, 2, v.Checked)

	v, err = o.Check(context.Background(), mixed, 0, ConversionThreshold)
	require.NoError(t, err)
	assert.False(t, v.Grayscale)
	assert.Equal(t, 1, v.GrayscalePages)

	_, err = o.Check(context.Background(), filepath.Join(dir, "missing.pdf"), 0, ConversionThreshold)
	assert.Equal(t, KindInputNotFound, KindOf(err))
}
