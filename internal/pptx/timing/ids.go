package timing

import (
	"strconv"

	"github.com/beevik/etree"
)

// MaxShapeID returns the largest shape id used by p:cNvPr/@id or
// p:spTgt/@spid anywhere under root, or 0.
func MaxShapeID(root *etree.Element) int {
	highest := maxAttr(root, ".//cNvPr[@id]", "id")

	return max(highest, maxAttr(root, ".//spTgt[@spid]", "spid"))
}

// MaxTimeNodeID returns the largest p:cTn/@id anywhere under root, or 0.
// It rescans the tree on every call; shape insertion and timing synthesis
// both consume ids within one save.
func MaxTimeNodeID(root *etree.Element) int {
	return maxAttr(root, ".//cTn[@id]", "id")
}

func maxAttr(root *etree.Element, path, attr string) int {
	highest := 0

	for _, elem := range root.FindElements(path) {
		value, err := strconv.Atoi(elem.SelectAttrValue(attr, ""))
		if err == nil && value > highest {
			highest = value
		}
	}

	return highest
}
