package builtin

import (
	"fmt"

	"github.com/capitalize-ai/extension-chat/internal/extension"
)

// Comparison renders charted comparisons across a set of options.
func Comparison() extension.Descriptor {
	return extension.Descriptor{
		Name: "comparison",
		Kind: extension.KindPresentation,
		Prompt: "use when you are comparing multiple options or choices. make " +
			"sure to use a variation of charts and use the appropriate chart for " +
			"the data.",
		Schema: comparisonSchema(),
		Render: renderComparison,
	}
}

func comparisonSchema() *extension.Schema {
	value := extension.Object(map[string]*extension.Schema{
		"key": extension.String().Describe(
			"The comparison option identifier (should match an entry in options)."),
		"value": extension.Number().Describe(
			"The numeric value for this option in the given category."),
	}, "key", "value")

	category := extension.Object(map[string]*extension.Schema{
		"category": extension.String().Describe(
			"The group or time bucket for the comparison, e.g. date or segment."),
		"values": extension.Array(value).Describe(
			"Each option/value pair that contributes to this comparison category."),
	}, "category", "values")

	comparison := extension.Object(map[string]*extension.Schema{
		"annotation": extension.String().Describe("Optional context about the comparison."),
		"type":       extension.String().WithEnum("barChart", "radarChart", "lineChart", "pieChart"),
		"comparison": extension.Object(map[string]*extension.Schema{
			"label": extension.String().Describe(
				"the field we are comparing, e.g. 'Department A', 'Version 2', etc."),
			"data": extension.Array(category),
		}, "label", "data"),
	}, "type", "comparison")

	return extension.Object(map[string]*extension.Schema{
		"options": extension.Array(extension.String()).Describe(
			"The list of items being compared, used for legends and filters."),
		"comparisons": extension.Array(comparison),
	}, "options", "comparisons")
}

func renderComparison(props extension.Props, _ extension.InteractFunc) extension.Node {
	children := []extension.Node{
		extension.Field("options", fmt.Sprintf("%v", props.StringSlice("options"))),
	}
	for _, comp := range props.Objects("comparisons") {
		chart := []extension.Node{
			extension.Field("type", comp.String("type")),
		}
		if note := comp.String("annotation"); note != "" {
			chart = append(chart, extension.Field("annotation", note))
		}
		if inner, ok := comp["comparison"].(map[string]any); ok {
			series := extension.Props(inner)
			chart = append(chart, extension.Field("label", series.String("label")))
			for _, row := range series.Objects("data") {
				chart = append(chart, renderCategory(row))
			}
		}
		children = append(children, extension.Widget("chart", chart...))
	}
	return extension.Widget("comparison", children...)
}

func renderCategory(row extension.Props) extension.Node {
	cells := []extension.Node{
		extension.Field("category", row.String("category")),
	}
	for _, pair := range row.Objects("values") {
		value, _ := pair.Number("value")
		cells = append(cells, extension.Field(pair.String("key"), fmt.Sprintf("%g", value)))
	}
	return extension.Widget("category", cells...)
}
