package viz

// Chart templates. Data files are tab separated and missing cells are NaN.
const (
	casesTmpl = `
{{.SetTerm}}
{{.SetOutput}}

set datafile separator tab
set title {{quote .Params.Title}}
set timefmt '%Y-%m-%d'
set xdata time
set format x '%m/%d'
set xtics rotate by 45 right
set ylabel 'Cases'
set yrange [0:*]
set key top left
set grid

plot '{{.DataPath}}' using 1:2 with lines lw 2 title 'Active', \
     '' using 1:3 with lines lw 2 title 'Confirmed', \
     '' using 1:4 with lines lw 2 title 'Dead', \
     '' using 1:5 with lines lw 2 title 'Recovered'
`

	barTmpl = `
{{.SetTerm}}
{{.SetOutput}}

set datafile separator tab
set title {{quote .Params.Title}}
set ylabel {{quote .Params.YLabel}}
set yrange [0:*]
set style fill solid 0.75
set boxwidth 0.8
set xtics rotate by 90 right scale 0
set grid ytics
unset key

plot '{{.DataPath}}' using 0:2:xtic(1) with boxes lc 'steelblue'
`

	scatterTmpl = `
{{.SetTerm}}
{{.SetOutput}}

set datafile separator tab
set xlabel {{quote .Params.XLabel}}
set ylabel {{quote .Params.YLabel}}
set key top left
set label 1 {{quote .Params.R2Label}} at graph 0.5,0.5 center font ',30' textcolor rgb '#c0c0c0'

f(x) = {{.Params.Slope}} * x + {{.Params.Intercept}}

plot '{{.DataPath}}' using 1:2 with points pt 7 ps 0.5 notitle, \
     f(x) with lines lc 'black' lw 1 title {{quote .Params.FitLabel}}
`

	growthTmpl = `
{{.SetTerm}}
{{.SetOutput}}

set datafile separator tab
set logscale y
set xrange [0:{{.Params.LastDay}}]
set xlabel {{quote .Params.XLabel}}
set ylabel 'Confirmed cases, log scale'
set key top left
set rmargin 20
{{range $i, $c := .Params.Curves}}
set label {{inc $i}} {{quote $c.Label}} at {{$.Params.LastDay}},{{$c.Last}} left offset 1,0 textcolor rgb '#808080'
{{- end}}

plot {{range $i, $p := .Params.Plots}}{{if $i}}, \
     {{end}}'{{$.DataPath}}' {{$p}}{{end}}
`

	changeTmpl = `
{{.SetTerm}}
{{.SetOutput}}

set datafile separator tab
set title {{quote .Params.Title}}
set timefmt '%Y-%m-%d'
set xdata time
set format x '%m/%d'
set xtics rotate by 45 right
set ylabel 'Daily new cases'
set yrange [0:*]
set key top left

plot '{{.DataPath}}' using 1:2 with filledcurves y1=0 lc 'skyblue' fs transparent solid 0.25 notitle, \
     '' using 1:2 with lines lc 'steelblue' title 'New cases', \
     '' using 1:3 with lines lc 'black' lw 2 title {{quote .Params.AverageLabel}}
`
)
