package integration

import (
	"fmt"
	"io/ioutil"
	"os"
	"os/exec"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gbytes"
	"github.com/onsi/gomega/gexec"

	. "github.com/skipor/bbtrace/testutil"
)

// Five events, one hit, capacity two leaves two residents.
const referenceTrace = "# test trace\n4005d0\n4005f8\n4005d0\n400610\n4005f8\n"

func writeTraceFile(content string) string {
	name := TmpFileName()
	err := ioutil.WriteFile(name, []byte(content), 0644)
	Expect(err).NotTo(HaveOccurred())
	return name
}

func run(stdin string, args ...string) *gexec.Session {
	cmd := exec.Command(BBTraceCLI, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	session, err := gexec.Start(cmd, GinkgoWriter, GinkgoWriter)
	Expect(err).NotTo(HaveOccurred())
	return session
}

var _ = Describe("bbtrace CLI", func() {
	var traceFile string
	BeforeEach(func() {
		traceFile = writeTraceFile(referenceTrace)
	})
	AfterEach(func() {
		os.Remove(traceFile)
	})

	It("replays a trace file and reports to stderr", func() {
		session := run("", "-trace", traceFile, "-n", "2")
		Eventually(session).Should(gexec.Exit(0))
		Expect(session.Err).To(gbytes.Say("analyzed by bbtrace"))
		Expect(session.Err).To(gbytes.Say(`Number of basic blocks: 5`))
		Expect(session.Err).To(gbytes.Say(`Number of basic block hits: 1`))
		Expect(session.Err).To(gbytes.Say(`Number of basic block misses: 4`))
		Expect(session.Err).To(gbytes.Say(`Size of cache: 2`))
	})

	It("reads the trace from stdin by default", func() {
		session := run(referenceTrace, "-n", "2")
		Eventually(session).Should(gexec.Exit(0))
		Expect(session.Err).To(gbytes.Say(`Number of basic blocks: 5`))
	})

	It("writes results to the output file", func() {
		out := TmpFileName()
		defer os.Remove(out)
		session := run("", "-trace", traceFile, "-n", "2", "-o", out)
		Eventually(session).Should(gexec.Exit(0))
		Expect(session.Err).To(gbytes.Say("See file"))

		data, err := ioutil.ReadFile(out)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring("Number of basic block misses: 4"))
	})

	It("uses capacity 50 by default", func() {
		var b strings.Builder
		for i := 0; i < 60; i++ {
			fmt.Fprintf(&b, "%x\n", 0x400000+i*0x10)
		}
		session := run(b.String())
		Eventually(session).Should(gexec.Exit(0))
		Expect(session.Err).To(gbytes.Say(`Number of basic blocks: 60`))
		Expect(session.Err).To(gbytes.Say(`Size of cache: 50`))
	})

	It("aggregates per-thread counters in partitioned mode", func() {
		session := run("0 4005d0\n1 4005d0\n0 4005d0\n", "-n", "2", "-discipline", "partitioned")
		Eventually(session).Should(gexec.Exit(0))
		Expect(session.Err).To(gbytes.Say(`Number of basic blocks: 3`))
		Expect(session.Err).To(gbytes.Say(`Number of basic block hits: 1`))
		Expect(session.Err).To(gbytes.Say(`Size of cache: 2`))
	})

	It("dumps metrics when asked", func() {
		session := run("", "-trace", traceFile, "-n", "2", "-metrics")
		Eventually(session).Should(gexec.Exit(0))
		Expect(session.Err).To(gbytes.Say(`cache.hits`))
	})

	Context("failures", func() {
		It("refuses to start on invalid capacity", func() {
			session := run("", "-trace", traceFile, "-n", "-1")
			Eventually(session).Should(gexec.Exit(1))
			Expect(session.Err).To(gbytes.Say("capacity"))
			Expect(session.Err).NotTo(gbytes.Say("Number of basic blocks"))
		})

		It("produces no report for corrupt traces", func() {
			session := run("4005d0\nnot-a-block\n", "-n", "2")
			Eventually(session).Should(gexec.Exit(1))
			Expect(session.Err).To(gbytes.Say("line 2"))
			Expect(session.Err).NotTo(gbytes.Say("Number of basic blocks"))
		})

		It("fails on missing trace file", func() {
			session := run("", "-trace", "/nonexistent/trace.txt")
			Eventually(session).Should(gexec.Exit(1))
		})
	})
})
