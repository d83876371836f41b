package model

import "strconv"

const (
	GeneMutationRate = iota
	GeneCrossoverPoints
	GeneLifespan
	GeneID
	GeneStrength
	GeneSize
	GeneMaxSpeed
	GeneMateEnergy
	GeneRedNeurons
	GeneGreenNeurons
	GeneBlueNeurons
	GeneInternalNeuralGroups
)

// MaxGeneValue is the largest raw byte a gene can hold.
const MaxGeneValue = 255

var geneLabels = []string{
	GeneMutationRate:         "Mutation Rate",
	GeneCrossoverPoints:      "Crossover Points",
	GeneLifespan:             "Lifespan",
	GeneID:                   "ID",
	GeneStrength:             "Strength",
	GeneSize:                 "Size",
	GeneMaxSpeed:             "Max Speed",
	GeneMateEnergy:           "MEF",
	GeneRedNeurons:           "Red Neurons",
	GeneGreenNeurons:         "Green Neurons",
	GeneBlueNeurons:          "Blue Neurons",
	GeneInternalNeuralGroups: "INGC",
}

func GeneLabel(index int) string {
	if index >= 0 && index < len(geneLabels) {
		return geneLabels[index]
	}
	return "Gene " + strconv.Itoa(index)
}
